package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/civeni/civeni-api/cmd/app"
)

// @title           CIVENI 2025 API
// @version         1.0
// @description     Registrations, payments, finance and content for CIVENI 2025.
// @BasePath        /api/v1
//
// @termsOfService  http://swagger.io/terms/
// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
//
// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/civeni/civeni-api/cmd/app"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
	"github.com/civeni/civeni-api/internal/repository/dao"
	"github.com/civeni/civeni-api/internal/schedulepdf"
	"github.com/civeni/civeni-api/internal/service"
)

const defaultAgendaTitle = "CIVENI 2025 - Programação"

// agenda is the YAML layout of an offline agenda file:
//
//	title: CIVENI 2025 - Programação
//	days:
//	  - date: 2025-12-10
//	    sessions:
//	      - start: "09:00"
//	        end: "10:00"
//	        title: Abertura
//	        location: Auditório
type agenda struct {
	Title string      `yaml:"title"`
	Days  []agendaDay `yaml:"days"`
}

type agendaDay struct {
	Date     string                   `yaml:"date"`
	Sessions []domain.ScheduleSession `yaml:"sessions"`
}

func loadAgenda(r io.Reader) (string, []domain.ScheduleDay, error) {
	var a agenda
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		return "", nil, fmt.Errorf("yaml.Decode -> %w", err)
	}

	title := a.Title
	if title == "" {
		title = defaultAgendaTitle
	}

	days := make([]domain.ScheduleDay, 0, len(a.Days))
	for i, d := range a.Days {
		date, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			return "", nil, fmt.Errorf("days[%d].date: %w", i, err)
		}

		sessions := make([]domain.ScheduleSession, len(d.Sessions))
		for j, session := range d.Sessions {
			if session.StartTime == "" || session.Title == "" {
				return "", nil, fmt.Errorf("days[%d].sessions[%d]: start and title are required", i, j)
			}
			session.Day = date
			session.Position = j
			sessions[j] = session
		}

		days = append(days, domain.ScheduleDay{
			Date:     date,
			Label:    service.DayLabel(date),
			Sessions: sessions,
		})
	}

	return title, days, nil
}

func readAgendaFile(path string) (string, []domain.ScheduleDay, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	return loadAgenda(f)
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Agenda tooling",
	}
	cmd.AddCommand(schedulePDFCmd())
	cmd.AddCommand(scheduleImportCmd())

	return cmd
}

func schedulePDFCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Render an agenda YAML file to PDF without a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			title, days, err := readAgendaFile(input)
			if err != nil {
				return err
			}

			out, err := os.Create(output)
			if err != nil {
				return err
			}
			defer out.Close()

			if err = schedulepdf.Render(out, title, days); err != nil {
				return fmt.Errorf("schedulepdf.Render -> %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "agenda.yaml", "agenda YAML file")
	cmd.Flags().StringVarP(&output, "out", "o", "agenda.pdf", "PDF output path")

	return cmd
}

func scheduleImportCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the stored agenda with an agenda YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, days, err := readAgendaFile(input)
			if err != nil {
				return err
			}

			conf, postgresDB, err := app.Setup(configPath)
			if err != nil {
				return err
			}

			repo := repository.NewScheduleRepository(dao.NewScheduleDAO(postgresDB))
			svc := service.NewScheduleService(repo, conf.Schedule.Title)
			if err = svc.Replace(cmd.Context(), days); err != nil {
				return fmt.Errorf("svc.Replace -> %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d days\n", len(days))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "agenda.yaml", "agenda YAML file")

	return cmd
}

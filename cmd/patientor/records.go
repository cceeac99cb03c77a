package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/patientor/patientor/internal/render"
	"github.com/patientor/patientor/internal/state"
	"github.com/patientor/patientor/internal/validator"
	"github.com/patientor/patientor/internal/viewer"
	"github.com/patientor/patientor/pkg/records"
)

// newCLIViewer builds a viewer that logs to stderr so stdout stays clean
// for command output.
func newCLIViewer() (*viewer.Viewer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return viewer.New(state.NewStore(state.Empty()), newAPIClient(cfg), validator.New(), newLogger(cfg, os.Stderr)), nil
}

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List, show and add patients through the records API",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List patient summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newCLIViewer()
			if err != nil {
				return err
			}
			if err := v.LoadPatients(cmd.Context()); err != nil {
				return cliError(err)
			}
			return writePatientTable(cmd.OutOrStdout(), v.State().Patients)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a patient with all entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newCLIViewer()
			if err != nil {
				return err
			}
			return showPatient(cmd, v, args[0])
		},
	})

	var np records.NewPatient
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newCLIViewer()
			if err != nil {
				return err
			}
			p, err := v.AddPatient(cmd.Context(), np)
			if err != nil {
				return cliError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created patient %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	add.Flags().StringVar(&np.Name, "name", "", "Full name")
	add.Flags().StringVar(&np.Occupation, "occupation", "", "Occupation")
	add.Flags().StringVar((*string)(&np.Gender), "gender", "", "male, female or other")
	add.Flags().StringVar(&np.DateOfBirth, "dob", "", "Date of birth (YYYY-MM-DD)")
	add.Flags().StringVar(&np.SSN, "ssn", "", "Social security number")
	cmd.AddCommand(add)

	return cmd
}

func entriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage patient entries",
	}

	var (
		values            records.EntryFormValues
		rating            int
		dischargeDate     string
		dischargeCriteria string
		sickLeaveStart    string
		sickLeaveEnd      string
	)
	add := &cobra.Command{
		Use:   "add <patient-id>",
		Short: "Add an entry to a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newCLIViewer()
			if err != nil {
				return err
			}

			e := values
			switch e.Type {
			case records.EntryTypeHealthCheck:
				if cmd.Flags().Changed("rating") {
					r := records.HealthCheckRating(rating)
					e.HealthCheckRating = &r
				}
			case records.EntryTypeHospital:
				if dischargeDate != "" || dischargeCriteria != "" {
					e.Discharge = &records.Discharge{Date: dischargeDate, Criteria: dischargeCriteria}
				}
			case records.EntryTypeOccupationalHealthcare:
				if sickLeaveStart != "" || sickLeaveEnd != "" {
					e.SickLeave = &records.SickLeave{StartDate: sickLeaveStart, EndDate: sickLeaveEnd}
				}
			}
			if e.Type != records.EntryTypeOccupationalHealthcare {
				e.EmployerName = ""
			}

			p, err := v.SubmitEntry(cmd.Context(), args[0], e)
			if err != nil {
				return cliError(err)
			}
			if err := v.LoadDiagnoses(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", viewer.ErrorMessage(err))
			}
			return render.WritePatientText(cmd.OutOrStdout(), p, v.State().Diagnoses)
		},
	}
	f := add.Flags()
	f.StringVar((*string)(&values.Type), "type", "", "HealthCheck, Hospital or OccupationalHealthcare")
	f.StringVar(&values.Description, "description", "", "Description")
	f.StringVar(&values.Date, "date", "", "Date (YYYY-MM-DD)")
	f.StringVar(&values.Specialist, "specialist", "", "Specialist")
	f.StringSliceVar(&values.DiagnosisCodes, "diagnosis", nil, "Diagnosis code (repeatable)")
	f.IntVar(&rating, "rating", 0, "Health check rating 0-3")
	f.StringVar(&dischargeDate, "discharge-date", "", "Hospital discharge date")
	f.StringVar(&dischargeCriteria, "discharge-criteria", "", "Hospital discharge criteria")
	f.StringVar(&values.EmployerName, "employer", "", "Employer name")
	f.StringVar(&sickLeaveStart, "sick-leave-start", "", "Sick leave start date")
	f.StringVar(&sickLeaveEnd, "sick-leave-end", "", "Sick leave end date")
	cmd.AddCommand(add)

	return cmd
}

func diagnosesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnoses",
		Short: "Browse the diagnosis catalogue",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all diagnosis codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newCLIViewer()
			if err != nil {
				return err
			}
			if err := v.LoadDiagnoses(cmd.Context()); err != nil {
				return cliError(err)
			}
			return writeDiagnosisTable(cmd.OutOrStdout(), v.State().Diagnoses)
		},
	})
	return cmd
}

func showPatient(cmd *cobra.Command, v *viewer.Viewer, id string) error {
	if err := v.LoadDiagnoses(cmd.Context()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", viewer.ErrorMessage(err))
	}
	p, err := v.OpenPatient(cmd.Context(), id)
	if err != nil {
		return cliError(err)
	}
	return render.WritePatientText(cmd.OutOrStdout(), p, v.State().Diagnoses)
}

func writePatientTable(w io.Writer, patients map[string]records.Patient) error {
	list := make([]records.Patient, 0, len(patients))
	for _, p := range patients {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGENDER\tOCCUPATION")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Gender, p.Occupation)
	}
	return tw.Flush()
}

func writeDiagnosisTable(w io.Writer, diagnoses map[string]records.Diagnosis) error {
	codes := make([]string, 0, len(diagnoses))
	for code := range diagnoses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tLATIN")
	for _, code := range codes {
		d := diagnoses[code]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Code, d.Name, d.Latin)
	}
	return tw.Flush()
}

// cliError turns API and validation failures into the message a user
// should see.
func cliError(err error) error {
	return errors.New(viewer.ErrorMessage(err))
}

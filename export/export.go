/*
export.go - report rendering for leave data

PURPOSE:
  Renders leave records into the two download formats the API serves: a
  human-readable fixed-layout TXT report and a spreadsheet-friendly CSV.
  Dates and labels are localized to pt-BR because the reports are consumed
  by Brazilian HR staff; the stored enum values stay English.
*/
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
)

const dateLayout = "02/01/2006"

var typeLabels = map[absence.LeaveType]string{
	absence.LeaveVacation:        "Férias",
	absence.LeaveMedical:         "Licença Médica",
	absence.LeaveMaternity:       "Licença Maternidade",
	absence.LeavePaternity:       "Licença Paternidade",
	absence.LeaveMarriage:        "Licença Gala",
	absence.LeaveBereavement:     "Licença Nojo",
	absence.LeaveStudy:           "Licença Estudo",
	absence.LeaveBloodDonation:   "Doação de Sangue",
	absence.LeaveCourtAppearance: "Comparecimento Judicial",
	absence.LeaveElectoral:       "Serviço Eleitoral",
	absence.LeaveAbsenceExcused:  "Falta Justificada",
	absence.LeaveWorkAccident:    "Acidente de Trabalho",
	absence.LeaveDispensation:    "Dispensa",
	absence.LeaveTimeOff:         "Folga",
	absence.LeaveOther:           "Outro",
}

var statusLabels = map[absence.LeaveStatus]string{
	absence.StatusPlanned: "Planejado",
	absence.StatusActive:  "Em andamento",
	absence.StatusEnded:   "Encerrado",
}

// TypeLabel returns the pt-BR display name for a leave type, falling back to
// the raw enum for values added after this table was written.
func TypeLabel(t absence.LeaveType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// StatusLabel returns the pt-BR display name for a leave status.
func StatusLabel(s absence.LeaveStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// LeavesTXT renders the printable report. generatedAt stamps the header so a
// printed copy can be traced back to its data.
func LeavesTXT(leaves []absence.Leave, generatedAt time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("=", 40)

	b.WriteString(rule + "\n")
	b.WriteString("      RELATÓRIO DE AFASTAMENTOS\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Gerado em: %s\n", generatedAt.Format("02/01/2006 15:04:05"))
	fmt.Fprintf(&b, "Total de registros: %d\n\n", len(leaves))
	b.WriteString(rule + "\n\n")

	for i, l := range leaves {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, l.EmployeeName)
		b.WriteString(strings.Repeat("-", 40) + "\n")
		fmt.Fprintf(&b, "Cargo: %s\n", l.EmployeeRole)
		fmt.Fprintf(&b, "Tipo: %s\n", TypeLabel(l.Type))
		fmt.Fprintf(&b, "Período: %s até %s\n", formatDate(l.StartDate), formatDate(l.EndDate))
		fmt.Fprintf(&b, "Dias: %d dias corridos (%s úteis)\n", l.DaysOff, workDays(l.WorkDaysOff))
		fmt.Fprintf(&b, "Status: %s\n", StatusLabel(l.Status))
		if l.Observations != "" {
			fmt.Fprintf(&b, "Observações: %s\n", l.Observations)
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString("Fim do Relatório\n")
	b.WriteString(rule + "\n")
	return b.String()
}

// LeavesCSV renders the spreadsheet export. encoding/csv handles quoting of
// names and free-text observation fields.
func LeavesCSV(leaves []absence.Leave) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Colaborador", "Cargo", "Tipo",
		"Data Início", "Data Fim",
		"Dias Corridos", "Dias Úteis",
		"Status", "Observações",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, l := range leaves {
		row := []string{
			l.EmployeeName,
			l.EmployeeRole,
			TypeLabel(l.Type),
			formatDate(l.StartDate),
			formatDate(l.EndDate),
			strconv.Itoa(l.DaysOff),
			workDays(l.WorkDaysOff),
			StatusLabel(l.Status),
			l.Observations,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDate(d dates.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(dateLayout)
}

func workDays(n *int) string {
	if n == nil {
		return "N/A"
	}
	return strconv.Itoa(*n)
}

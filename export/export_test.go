package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
	"github.com/pliniou/Project-Ausencias/export"
)

func sampleLeaves() []absence.Leave {
	work := 8
	return []absence.Leave{
		{
			EmployeeName: "Plinio Rodrigues",
			EmployeeRole: "ANALISTA",
			Type:         absence.LeaveVacation,
			StartDate:    dates.MustParse("2026-03-10"),
			EndDate:      dates.MustParse("2026-03-20"),
			DaysOff:      11,
			WorkDaysOff:  &work,
			Status:       absence.StatusPlanned,
			Observations: "Primeira fração",
		},
		{
			EmployeeName: "Silva, João \"JC\"",
			EmployeeRole: "GERENTE",
			Type:         absence.LeaveMedical,
			StartDate:    dates.MustParse("2026-04-01"),
			EndDate:      dates.MustParse("2026-04-03"),
			DaysOff:      3,
			Status:       absence.StatusEnded,
		},
	}
}

func TestLeavesTXT(t *testing.T) {
	out := export.LeavesTXT(sampleLeaves(), time.Date(2026, time.May, 2, 9, 30, 0, 0, time.UTC))

	assert.Contains(t, out, "RELATÓRIO DE AFASTAMENTOS")
	assert.Contains(t, out, "Gerado em: 02/05/2026 09:30:00")
	assert.Contains(t, out, "Total de registros: 2")
	assert.Contains(t, out, "[1] Plinio Rodrigues")
	assert.Contains(t, out, "Tipo: Férias")
	assert.Contains(t, out, "Período: 10/03/2026 até 20/03/2026")
	assert.Contains(t, out, "Dias: 11 dias corridos (8 úteis)")
	assert.Contains(t, out, "Status: Planejado")
	assert.Contains(t, out, "Observações: Primeira fração")
	// Missing work-day counts print as N/A, missing observations are omitted.
	assert.Contains(t, out, "Dias: 3 dias corridos (N/A úteis)")
	assert.NotContains(t, out, "Observações: \n")
	assert.True(t, strings.HasSuffix(out, "Fim do Relatório\n"+strings.Repeat("=", 40)+"\n"))
}

func TestLeavesCSV(t *testing.T) {
	out, err := export.LeavesCSV(sampleLeaves())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Colaborador,Cargo,Tipo,Data Início,Data Fim,Dias Corridos,Dias Úteis,Status,Observações", lines[0])
	assert.Equal(t, "Plinio Rodrigues,ANALISTA,Férias,10/03/2026,20/03/2026,11,8,Planejado,Primeira fração", lines[1])
	// Commas and quotes in names must be escaped per RFC 4180.
	assert.Equal(t, `"Silva, João ""JC""",GERENTE,Licença Médica,01/04/2026,03/04/2026,3,N/A,Encerrado,`, lines[2])
}

func TestLeavesCSV_Empty(t *testing.T) {
	out, err := export.LeavesCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Colaborador,Cargo,Tipo,Data Início,Data Fim,Dias Corridos,Dias Úteis,Status,Observações\n", out)
}

func TestTypeLabel_FallsBackToRawValue(t *testing.T) {
	assert.Equal(t, "SABBATICAL", export.TypeLabel(absence.LeaveType("SABBATICAL")))
}

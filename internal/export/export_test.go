package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"botdesk/internal/domain/client"
	"botdesk/internal/domain/conversation"
	"botdesk/internal/domain/expense"
	"botdesk/internal/domain/project"
	"botdesk/internal/report"
)

func sampleProjects() []project.Project {
	return []project.Project{
		{
			ID:              "p1",
			Name:            "Tacos Norte",
			Status:          project.StatusEstablished,
			ClientName:      "Don Raúl",
			MonthlyPrice:    decimal.NewFromInt(1500),
			CutoffDate:      "2025-03-15",
			BillingRequired: true,
			TaxID:           "XAXX010101000",
			LegalName:       "Tacos Norte SA de CV",
		},
		{
			ID:           "p2",
			Name:         "Florería Lupita",
			Status:       project.StatusTrial,
			MonthlyPrice: decimal.NewFromInt(800),
		},
	}
}

func TestProjectsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ProjectsXLSX(&buf, sampleProjects()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Proyectos")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two projects")

	assert.Equal(t, "Nombre", rows[0][0])
	assert.Equal(t, "Tacos Norte", rows[1][0])
	assert.Equal(t, "established", rows[1][1])
	assert.Equal(t, "1500.00", rows[1][3])
	assert.Equal(t, "Sí", rows[1][7])
	assert.Equal(t, "Florería Lupita", rows[2][0])
}

func TestBackupRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	projects := sampleProjects()
	clients := []client.Client{{ID: "c1", Name: "don raúl"}}
	expenses := []expense.Expense{{ID: "e1", Name: "hosting", Amount: decimal.NewFromInt(100), Date: "2025-01-01"}}

	var buf bytes.Buffer
	require.NoError(t, WriteBackup(&buf, projects, clients, expenses, now))

	b, err := ReadBackup(&buf)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, b.Version)
	assert.Equal(t, now, b.ExportedAt)
	require.Len(t, b.Projects, 2)
	assert.Equal(t, "Tacos Norte", b.Projects[0].Name)
	assert.True(t, b.Projects[0].MonthlyPrice.Equal(decimal.NewFromInt(1500)))
	require.Len(t, b.Clients, 1)
	require.Len(t, b.Expenses, 1)
}

func TestReadBackupRejectsUnknownVersion(t *testing.T) {
	_, err := ReadBackup(strings.NewReader(`{"version":"99"}`))
	assert.ErrorContains(t, err, "unsupported backup version")

	_, err = ReadBackup(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestReportPDFProducesDocument(t *testing.T) {
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	expenses := []expense.Expense{
		{ID: "e1", Name: "hosting", Amount: decimal.NewFromInt(1200),
			Category: expense.CategoryHosting, Date: "2025-01-05",
			IsRecurring: true, RecurringType: expense.RecurringMonthly},
	}
	s := report.Summarize(sampleProjects(), expenses, 2025, 3, now)
	months := expense.MonthlyAllocation(expenses, 2025)

	var buf bytes.Buffer
	require.NoError(t, ReportPDF(&buf, s, months))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output is a PDF document")
	assert.Greater(t, buf.Len(), 1000)
}

func TestAnalysisDocxLayout(t *testing.T) {
	a := conversation.Analysis{
		Conversations: 2,
		TotalMessages: 10,
		Inbound:       6,
		Outbound:      4,
		BusiestHour:   14,
		TopContacts: []conversation.ContactCount{
			{Phone: "5512345678", Contact: "Don Raúl", Messages: 7},
			{Phone: "5598765432", Messages: 3},
		},
		GeneratedAt: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, AnalysisDocx(&buf, a))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	var document string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			raw, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			document = string(raw)
		}
	}

	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "_rels/.rels")
	require.NotEmpty(t, document)
	assert.Contains(t, document, "Análisis de conversaciones")
	assert.Contains(t, document, "Mensajes totales: 10")
	assert.Contains(t, document, "14:00")
	assert.Contains(t, document, "Don Raúl")
	assert.Contains(t, document, "5598765432", "contacts without a name fall back to the phone")
}

func TestAnalysisDocxEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, AnalysisDocx(&buf, conversation.Analysis{}))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, _ := f.Open()
			raw, _ := io.ReadAll(rc)
			rc.Close()
			assert.Contains(t, string(raw), "Sin datos")
		}
	}
}

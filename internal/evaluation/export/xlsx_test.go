package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
)

func scoredRecord() *models.Record {
	p := parcel.New("25056000HZ0346")
	p.SiteArea = parcel.Known(8000.0)
	p.TownCenter = parcel.Known(true)
	p.Answers.Pollution = parcel.Unknown[parcel.PollutionStatus]()

	scorer := mutability.NewScorer(mutability.DefaultMatrix())
	return &models.Record{
		ID:          uuid.New(),
		Identifier:  p.Identifier,
		Parcel:      *p,
		Answers:     p.Answers,
		Results:     scorer.Score(*p),
		Reliability: mutability.EstimateReliability(*p),
		CreatedAt:   time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestWrite(t *testing.T) {
	rec := scoredRecord()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetUsages, SheetDetails, SheetParcel}, f.GetSheetList())

	t.Run("summary", func(t *testing.T) {
		id, err := f.GetCellValue(SheetSummary, "B1")
		require.NoError(t, err)
		assert.Equal(t, rec.ID.String(), id)

		identifier, err := f.GetCellValue(SheetSummary, "B2")
		require.NoError(t, err)
		assert.Equal(t, "25056000HZ0346", identifier)
	})

	t.Run("one row per usage in rank order", func(t *testing.T) {
		rows, err := f.GetRows(SheetUsages)
		require.NoError(t, err)
		require.Len(t, rows, mutability.UsageCount+1)
		assert.Equal(t, "Rank", rows[0][0])
		assert.Equal(t, "1", rows[1][0])
		assert.Equal(t, string(rec.Results[0].Usage), rows[1][1])
	})

	t.Run("details list every contribution", func(t *testing.T) {
		want := 0
		for _, r := range rec.Results {
			want += len(r.Details)
		}
		rows, err := f.GetRows(SheetDetails)
		require.NoError(t, err)
		assert.Len(t, rows, want+1)
	})

	t.Run("parcel lists every criterion with its state", func(t *testing.T) {
		rows, err := f.GetRows(SheetParcel)
		require.NoError(t, err)
		require.Len(t, rows, parcel.CriteriaTotal+1)
		assert.Equal(t, []string{"siteArea", "known", "8000"}, rows[1])

		var pollution []string
		for _, r := range rows {
			if r[0] == string(parcel.CriterionPollution) {
				pollution = r
			}
		}
		require.GreaterOrEqual(t, len(pollution), 2)
		assert.Equal(t, "unknown", pollution[1])
	})
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "mutabilite-25056000HZ0346-20260504.xlsx", Filename(scoredRecord()))
}

package settings

import (
	"testing"

	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestApplyOrderAndDefaults(t *testing.T) {
	sch := schema.New()
	cur := Default()
	require.Equal(t, DefaultCriteria, cur.Criteria)

	res, err := Apply(sch, cur, Patch{
		DisplayedFields:  Set([]string{"title", "price"}),
		FilterableFields: Set([]string{"price"}),
		SearchableFields: Set([]string{"title"}),
	}, false)
	require.NoError(t, err)
	require.Equal(t, []string{"title", "price"}, res.Settings.DisplayedFields)
	require.Equal(t, []string{"price"}, res.Settings.FilterableFields)
	require.Contains(t, res.ReindexReason, "searchable_fields")
	require.Contains(t, res.ReindexReason, "newly_faceted_fields")
	require.True(t, res.ReindexRequired)
}

func TestApplyNoReindexWhenNothingSearchRelevantChanges(t *testing.T) {
	sch := schema.New()
	cur := Default()
	res, err := Apply(sch, cur, Patch{DisplayedFields: Set([]string{"title"})}, false)
	require.NoError(t, err)
	require.False(t, res.ReindexRequired)
}

func TestApplyIdempotent(t *testing.T) {
	sch := schema.New()
	patch := Patch{StopWords: Set([]string{"The", "A"})}

	first, err := Apply(sch, Default(), patch, false)
	require.NoError(t, err)
	require.True(t, first.ReindexRequired)

	second, err := Apply(sch, first.Settings, patch, false)
	require.NoError(t, err)
	require.False(t, second.ReindexRequired)
	require.Equal(t, first.Settings, second.Settings)
}

func TestApplyRejectsInvalidTypoThresholds(t *testing.T) {
	sch := schema.New()
	_, err := Apply(sch, Default(), Patch{
		MinWordLenOneTypo:  Set[uint8](9),
		MinWordLenTwoTypos: Set[uint8](5),
	}, false)
	require.ErrorIs(t, err, types.ErrInvalidMinTypoWordLen)
}

func TestApplyRejectsPrimaryKeyChangeOnceDocumentsExist(t *testing.T) {
	sch := schema.New()
	require.NoError(t, sch.SetPrimaryKey("id", false))

	_, err := Apply(sch, Default(), Patch{PrimaryKey: Set("sku")}, true)
	require.ErrorIs(t, err, types.ErrPrimaryKeyImmutable)
}

func TestApplyNormalizesExactWordsAndSynonyms(t *testing.T) {
	sch := schema.New()
	res, err := Apply(sch, Default(), Patch{
		ExactWords: Set([]string{"IPhone", "WiFi"}),
		Synonyms:   Set(map[string][]string{"NYC": {"New York", "New York City"}}),
	}, false)
	require.NoError(t, err)
	require.Equal(t, []string{"iphone", "wifi"}, res.Settings.ExactWords)
	require.Equal(t, []string{"new york", "new york city"}, res.Settings.Synonyms["nyc"])
	require.Contains(t, res.ReindexReason, "synonyms")
}

func TestApplyResetRestoresDefault(t *testing.T) {
	sch := schema.New()
	withPatch, err := Apply(sch, Default(), Patch{Criteria: Set([]string{"words"})}, false)
	require.NoError(t, err)
	require.Equal(t, []string{"words"}, withPatch.Settings.Criteria)

	reset, err := Apply(sch, withPatch.Settings, Patch{Criteria: ResetField[[]string]()}, false)
	require.NoError(t, err)
	require.Equal(t, DefaultCriteria, reset.Settings.Criteria)
}

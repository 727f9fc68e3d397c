package settings

const (
	// DefaultMinWordLenOneTypo matches milli's own default: words shorter
	// than this never tolerate a typo.
	DefaultMinWordLenOneTypo uint8 = 5
	// DefaultMinWordLenTwoTypos matches milli's own default: words
	// shorter than this tolerate at most one typo.
	DefaultMinWordLenTwoTypos uint8 = 9
	// DefaultMaxValuesPerFacet caps the number of distinct values a facet
	// distribution request returns for one field (§11).
	DefaultMaxValuesPerFacet = 100
	// DefaultMaxQueryTreeNodes bounds query expansion (§4.9).
	DefaultMaxQueryTreeNodes = 1024
)

// DefaultCriteria is the ranking criterion order a freshly created index
// starts with, matching §4.10's fixed set before any user attribute
// ordering is appended.
var DefaultCriteria = []string{"typo", "words", "proximity", "attribute", "exactness"}

// Settings is the fully resolved configuration of one index: every
// field always has a concrete value, never a "not set" placeholder.
// Patch carries the partial, resettable view a caller submits.
type Settings struct {
	DisplayedFields    []string // nil means "*", every field displayed
	SearchableFields   []string // nil means every field is searchable
	FilterableFields   []string
	SortableFields     []string
	DistinctField      string
	Criteria           []string
	PrimaryKey         string
	AuthorizeTypos     bool
	MinWordLenOneTypo  uint8
	MinWordLenTwoTypos uint8
	ExactWords         []string
	ExactAttributes    []string
	StopWords          []string
	Synonyms           map[string][]string
	MaxValuesPerFacet  int
	MaxQueryTreeNodes  int
}

// Default returns the settings a freshly created index starts with.
func Default() Settings {
	return Settings{
		Criteria:           append([]string(nil), DefaultCriteria...),
		AuthorizeTypos:     true,
		MinWordLenOneTypo:  DefaultMinWordLenOneTypo,
		MinWordLenTwoTypos: DefaultMinWordLenTwoTypos,
		MaxValuesPerFacet:  DefaultMaxValuesPerFacet,
		MaxQueryTreeNodes:  DefaultMaxQueryTreeNodes,
	}
}

// Patch is the partial settings update one update_settings call submits;
// every field defaults to Field[T]{} (not set), leaving that part of the
// resolved Settings untouched. Field groups and their comments mirror the
// fixed application order §4.8 requires.
type Patch struct {
	// Group 1: affects only projection, never triggers a reindex.
	DisplayedFields Field[[]string]

	// Group 2: record which fields need faceted materialization.
	FilterableFields Field[[]string]
	SortableFields   Field[[]string]
	DistinctField    Field[string]

	// Group 3: ranking order and the immutable primary key.
	Criteria   Field[[]string]
	PrimaryKey Field[string]

	// Group 4: typo tolerance thresholds.
	AuthorizeTypos     Field[bool]
	MinWordLenOneTypo  Field[uint8]
	MinWordLenTwoTypos Field[uint8]

	// Group 5: exact words/attributes bypass typo tolerance entirely (§11).
	ExactWords      Field[[]string]
	ExactAttributes Field[[]string]

	// Group 6: stop words, synonyms and searchable fields all trigger a
	// reindex when changed.
	StopWords        Field[[]string]
	Synonyms         Field[map[string][]string]
	SearchableFields Field[[]string]

	// Supplemented (§11): per-field cap on a facet distribution response.
	MaxValuesPerFacet Field[int]
}

package transform

import (
	"testing"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *kv.DB {
	t.Helper()
	db, err := kv.Open(t.TempDir(), []string{document.DB})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyBasicInsert(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()

	var out *Output
	err := db.View(func(txn *kv.RoTxn) error {
		var err error
		out, err = Apply(txn.Bucket(document.DB), sch, Options{
			Format: types.FormatJSON,
			Method: types.ReplaceDocuments,
			Data:   []byte(`[{"id":1,"t":"iphone from apple"}]`),
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	require.Equal(t, 1, out.Report.NewDocuments)
	require.Equal(t, types.DocID(0), out.Documents[0].InternalID)
	require.EqualValues(t, "1", out.Documents[0].ExternalID)
}

func TestApplyReplaceVsUpdate(t *testing.T) {
	db := openTestDB(t)

	for _, tc := range []struct {
		method   types.IndexingMethod
		wantKeys []types.FieldID
	}{
		{types.UpdateDocuments, []types.FieldID{0, 1, 2}},
		{types.ReplaceDocuments, []types.FieldID{0, 1}},
	} {
		sch := schema.New()
		var out *Output
		err := db.View(func(txn *kv.RoTxn) error {
			var err error
			out, err = Apply(txn.Bucket(document.DB), sch, Options{
				Format: types.FormatJSON,
				Method: tc.method,
				Data:   []byte(`[{"id":1,"a":"x"},{"id":1,"b":"y"}]`),
			})
			return err
		})
		require.NoError(t, err)
		require.Len(t, out.Documents, 1)
		require.Len(t, out.Documents[0].Record.Fields(), len(tc.wantKeys))
	}
}

func TestApplyEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()
	var out *Output
	err := db.View(func(txn *kv.RoTxn) error {
		var err error
		out, err = Apply(txn.Bucket(document.DB), sch, Options{
			Format: types.FormatJSON,
			Method: types.ReplaceDocuments,
			Data:   []byte(`[]`),
		})
		return err
	})
	require.NoError(t, err)
	require.Empty(t, out.Documents)
}

func TestApplyMissingPrimaryKeyFails(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()
	err := db.View(func(txn *kv.RoTxn) error {
		_, err := Apply(txn.Bucket(document.DB), sch, Options{
			Format:     types.FormatJSON,
			Method:     types.ReplaceDocuments,
			Data:       []byte(`[{"t":"no id here"}]`),
			PrimaryKey: "id",
		})
		return err
	})
	require.ErrorIs(t, err, types.ErrMissingPrimaryKeyValue)
}

func TestApplyAutoGenerateUUID(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()
	var out *Output
	err := db.View(func(txn *kv.RoTxn) error {
		var err error
		out, err = Apply(txn.Bucket(document.DB), sch, Options{
			Format:       types.FormatJSON,
			Method:       types.ReplaceDocuments,
			Data:         []byte(`[{"t":"no id here"}]`),
			PrimaryKey:   "id",
			AutoGenerate: true,
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	require.NotEmpty(t, out.Documents[0].ExternalID)
}

func TestApplyNDJSON(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()
	var out *Output
	err := db.View(func(txn *kv.RoTxn) error {
		var err error
		out, err = Apply(txn.Bucket(document.DB), sch, Options{
			Format: types.FormatNDJSON,
			Method: types.ReplaceDocuments,
			Data:   []byte("{\"id\":1,\"t\":\"a\"}\n{\"id\":2,\"t\":\"b\"}\n"),
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, out.Documents, 2)
}

func TestApplyCSV(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()
	var out *Output
	err := db.View(func(txn *kv.RoTxn) error {
		var err error
		out, err = Apply(txn.Bucket(document.DB), sch, Options{
			Format: types.FormatCSV,
			Method: types.ReplaceDocuments,
			Data:   []byte("id,price:number\n1,29.99\n2,9.5\n"),
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, out.Documents, 2)
}

func TestApplySortsByInternalID(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()
	var out *Output
	err := db.View(func(txn *kv.RoTxn) error {
		var err error
		out, err = Apply(txn.Bucket(document.DB), sch, Options{
			Format: types.FormatJSON,
			Method: types.ReplaceDocuments,
			Data:   []byte(`[{"id":"zz"},{"id":"aa"}]`),
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, out.Documents, 2)
	require.Less(t, out.Documents[0].InternalID, out.Documents[1].InternalID)
}

func TestApplyMultipleRunsMerge(t *testing.T) {
	db := openTestDB(t)
	sch := schema.New()

	data := `[`
	for i := 0; i < 50; i++ {
		if i > 0 {
			data += ","
		}
		data += `{"id":` + itoa(i) + `}`
	}
	data += `]`

	var out *Output
	err := db.View(func(txn *kv.RoTxn) error {
		var err error
		out, err = Apply(txn.Bucket(document.DB), sch, Options{
			Format:     types.FormatJSON,
			Method:     types.ReplaceDocuments,
			Data:       []byte(data),
			MaxRunSize: 5,
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, out.Documents, 50)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	if neg {
		digits = "-" + digits
	}
	return digits
}

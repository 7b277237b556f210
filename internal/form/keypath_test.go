package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPathString(t *testing.T) {
	tests := []struct {
		name string
		path KeyPath
		want string
	}{
		{"empty", Path(), ""},
		{"single key", Path("invoice_number"), "invoice_number"},
		{"nested keys", Path("supplier", "name"), "supplier.name"},
		{"line field", Path("lines", 2, "start_time"), "lines[2].start_time"},
		{"nested line item", Path("lines", 0, "lineitems", 3, "amount"), "lines[0].lineitems[3].amount"},
		{"index first", Path("vatitems", 1), "vatitems[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestParsePathRoundTrip(t *testing.T) {
	for _, s := range []string{
		"invoice_number",
		"supplier.name",
		"lines[2].start_time",
		"lines[0].lineitems[3].amount",
		"vatitems[1]",
	} {
		parsed, err := ParsePath(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, parsed.String())
	}
}

func TestParsePathMalformed(t *testing.T) {
	for _, s := range []string{"lines[", "lines[x]", "lines]2["} {
		_, err := ParsePath(s)
		assert.Error(t, err, s)
	}
}

func TestKeyPathAppendDoesNotShareStorage(t *testing.T) {
	base := Path("lines", 0)
	a := base.Append(Key("date"))
	b := base.Append(Key("start_time"))

	assert.Equal(t, "lines[0].date", a.String())
	assert.Equal(t, "lines[0].start_time", b.String())
	assert.Equal(t, "lines[0]", base.String())
}

func TestKeyPathJSON(t *testing.T) {
	path := Path("lines", 2, "date")

	data, err := json.Marshal(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["lines",2,"date"]`, string(data))

	var decoded KeyPath
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, path, decoded)
}

func TestKeyPathUnmarshalRejectsBadSegments(t *testing.T) {
	var kp KeyPath
	assert.Error(t, json.Unmarshal([]byte(`["lines",2.5]`), &kp))
	assert.Error(t, json.Unmarshal([]byte(`["lines",-1]`), &kp))
	assert.Error(t, json.Unmarshal([]byte(`[true]`), &kp))
}

package files

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/embroiderystore/internal/models"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"comma", "a.dst, b.dst ,c.dst", []string{"a.dst", "b.dst", "c.dst"}},
		{"semicolon", "a.pes;b.pes", []string{"a.pes", "b.pes"}},
		{"pipe", "a.exp|b.exp|", []string{"a.exp", "b.exp"}},
		{"mixed delimiters drop empties", "a,;b||c", []string{"a", "b", "c"}},
		{"concatenated jef", "rose_1.jeftulip_2.jefdaisy.jef", []string{"rose_1.jef", "tulip_2.jef", "daisy.jef"}},
		{"concatenated urls", "http://a/1.dsthttps://b/2.dst", []string{"http://a/1.dst", "https://b/2.dst"}},
		{"single value", "  rose.dst ", []string{"rose.dst"}},
		{"single jef", "rose.jef", []string{"rose.jef"}},
		{"empty", "", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.in))
		})
	}
}

func TestSplit_DelimiterWinsOverJef(t *testing.T) {
	got := Split("a.jef,b.jefc.jef")
	assert.Equal(t, []string{"a.jef", "b.jefc.jef"}, got)
}

func TestNormalize_ArrayUsedAsIs(t *testing.T) {
	f := models.FlexList("a,b", "c")
	assert.Equal(t, []string{"a,b", "c"}, Normalize(f))
}

func TestReconcile_EqualLengthKeepsOrder(t *testing.T) {
	got := Reconcile([]string{"u1", "u2", "u3"}, []string{"n1", "n2", "n3"}, "", "")
	assert.Equal(t, []Pair{{"u1", "n1"}, {"u2", "n2"}, {"u3", "n3"}}, got)
}

func TestReconcile_OneURLManyNamesRepeatsURL(t *testing.T) {
	got := Reconcile([]string{"u"}, []string{"a", "b", "c"}, "", "")
	require.Len(t, got, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, "u", got[i].URL)
		assert.Equal(t, name, got[i].Name)
	}
}

func TestReconcile_ManyURLsOneNameNumbersNames(t *testing.T) {
	got := Reconcile([]string{"u1", "u2", "u3"}, []string{"rose.dst"}, "", "")
	assert.Equal(t, []Pair{{"u1", "1_rose.dst"}, {"u2", "2_rose.dst"}, {"u3", "3_rose.dst"}}, got)
}

func TestReconcile_MismatchFallsBackToRaw(t *testing.T) {
	got := Reconcile([]string{"u1", "u2"}, []string{"a", "b", "c"}, "u1,u2", "a,b,c")
	assert.Equal(t, []Pair{{"u1,u2", "a,b,c"}}, got)
}

func TestFromDescriptor_Example(t *testing.T) {
	d := models.FileDescriptor{
		FileURL:  models.FlexString("http://a/1.dst,http://a/2.dst"),
		FileName: models.FlexString("x.dst,y.dst"),
	}
	assert.Equal(t, []Pair{{"http://a/1.dst", "x.dst"}, {"http://a/2.dst", "y.dst"}}, FromDescriptor(d))
}

func TestFromDescriptor_BothAbsent(t *testing.T) {
	assert.Empty(t, FromDescriptor(models.FileDescriptor{}))
}

func TestFromDescriptor_MissingNameUsesURLBase(t *testing.T) {
	d := models.FileDescriptor{FileURL: models.FlexString("https://cdn/x/rose.pes?sig=1")}
	assert.Equal(t, []Pair{{"https://cdn/x/rose.pes?sig=1", "rose.pes"}}, FromDescriptor(d))
}

func TestFromDescriptor_NameWithoutURLIsDropped(t *testing.T) {
	d := models.FileDescriptor{FileName: models.FlexString("rose.pes")}
	assert.Empty(t, FromDescriptor(d))
}

func TestFromDescriptor_DecodedJSONShapes(t *testing.T) {
	var p models.Product
	raw := `{
		"name": "Rose",
		"price": "12.50",
		"machine_files": {
			"DST": {"file_url": ["http://a/1.dst", "http://a/2.dst"], "file_name": ["one.dst", "two.dst"]},
			"JEF": {"file_url": "http://a/rose.jef", "file_name": "a.jefb.jef"},
			"PES": {"file_url": null, "file_name": null}
		}
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, []Pair{{"http://a/1.dst", "one.dst"}, {"http://a/2.dst", "two.dst"}}, FromDescriptor(p.Files["DST"]))
	assert.Equal(t, []Pair{{"http://a/rose.jef", "a.jef"}, {"http://a/rose.jef", "b.jef"}}, FromDescriptor(p.Files["JEF"]))
	assert.Empty(t, FromDescriptor(p.Files["PES"]))

	all := ForProduct(&p)
	require.Len(t, all, 4)
	assert.Equal(t, "DST/one.dst", all[0].Name)
	assert.Equal(t, "JEF/b.jef", all[3].Name)
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "Rose_Garden_DST.zip", ArchiveName("Rose Garden", "DST"))
	assert.Equal(t, "Rose_Garden_all.zip", ArchiveName(" Rose / Garden ", ""))
	assert.Regexp(t, `^design-[0-9a-f]{8}_PES\.zip$`, ArchiveName("???", "PES"))
}

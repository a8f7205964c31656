package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixEncoding(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"MatemÃ¡tica", "Matemática"},
		{"EducaciÃ³n FÃ­sica", "Educación Física"},
		{"NiÃ±os y niÃ±as", "Niños y niñas"},
		{"Â¿QuÃ© es?", "¿Qué es?"},
		{"â€¢ uno", "• uno"},
		{"fin â€¦", "fin …"},
		{"textoÂ extra", "texto extra"},
		{"glyph\uf0b7here", "glyphhere"},
		{"ya está bien", "ya está bien"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FixEncoding(tt.in), tt.in)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "educacion fisica", Fold("  Educación FÍSICA "))
	assert.Equal(t, "nino", Fold("Niño"))
	assert.Equal(t, "a b", FoldWords("A   \tb"))
}

func TestSplitItems(t *testing.T) {
	got := SplitItems("• uno\n• dos; tres | cuatro, cinco▪ seis·siete ● ocho\n\n uno ")
	assert.Equal(t, []string{"uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho"}, got)
	assert.Empty(t, SplitItems("  ,; \n"))
}

func TestSplitLinesKeepsCommas(t *testing.T) {
	assert.Equal(t, []string{"uno, dos", "tres; cuatro", "cinco"}, SplitLines("• uno, dos\n• tres; cuatro\r\n\n ● cinco"))
	assert.Empty(t, SplitLines(" \n "))
}

func TestToItemListAcceptsArrays(t *testing.T) {
	assert.Equal(t, []string{"a, b", "c"}, ToItemList([]interface{}{" a, b ", "", nil, "c", "c"}))
	assert.Equal(t, []string{"x"}, ToItemList([]string{"x", " "}))
	assert.Equal(t, []string{"3"}, ToItemList(3))
	assert.Nil(t, ToItemList(nil))
}

func TestToBulletedText(t *testing.T) {
	assert.Equal(t, "", ToBulletedText(nil))
	assert.Equal(t, "", ToBulletedText([]string{" ", ""}))
	assert.Equal(t, "• a\n• b", ToBulletedText([]string{"a", " b "}))
}

func TestItemListRoundTripIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"uno",
		"• uno\n• dos",
		"a,b;c|d",
		"  a  ,  a , b ",
		"Saludo lúdico: en círculo\n\n• Motivación; imagen",
		"•••",
		"x\r\ny",
	}
	for _, in := range inputs {
		first := ToItemList(in)
		again := ToItemList(ToBulletedText(first))
		joined := ToItemList(strings.Join(first, "\n"))
		assert.Equal(t, first, again, "bulleted round trip of %q", in)
		assert.Equal(t, first, joined, "newline round trip of %q", in)
	}
}

func TestWalkPassesNearestKey(t *testing.T) {
	tree := map[string]interface{}{
		"valor": "Respeto",
		"filas": []interface{}{
			map[string]interface{}{"titulo": "uno", "n": 3.0},
		},
		"lista": []interface{}{"a", "b"},
	}
	seen := map[string][]string{}
	out := Walk(tree, func(key, s string) string {
		seen[key] = append(seen[key], s)
		return strings.ToUpper(s)
	})

	m := out.(map[string]interface{})
	assert.Equal(t, "RESPETO", m["valor"])
	assert.Equal(t, []interface{}{"A", "B"}, m["lista"])
	row := m["filas"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "UNO", row["titulo"])
	assert.Equal(t, 3.0, row["n"])
	assert.ElementsMatch(t, []string{"a", "b"}, seen["lista"])

	require.Equal(t, "Respeto", tree["valor"], "input tree must not be mutated")
}

func TestFixEncodingDeep(t *testing.T) {
	out := FixEncodingDeep(map[string]string{"area": "MatemÃ¡tica"}).(map[string]string)
	assert.Equal(t, "Matemática", out["area"])
}

func TestWalkDropEmpty(t *testing.T) {
	blank := func(_ string, s string) string {
		if s == "x" {
			return ""
		}
		return s
	}
	tree := map[string]interface{}{
		"a": []interface{}{"x", "y", []string{"x", "z"}},
		"b": "x",
	}
	out := WalkDropEmpty(tree, blank).(map[string]interface{})
	assert.Equal(t, []interface{}{"y", []string{"z"}}, out["a"])
	assert.Equal(t, "", out["b"])

	kept := Walk(tree, blank).(map[string]interface{})
	assert.Equal(t, []interface{}{"", "y", []string{"", "z"}}, kept["a"])
}

package core_test

import (
	"reflect"
	"testing"

	"concilia/internal/core"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "PIX Recebido", "pix recebido"},
		{"strips diacritics", "transferência referência número", "transferencia referencia numero"},
		{"punctuation to spaces", "PAG*BOLETO-1234/A", "pag boleto 1234 a"},
		{"collapses whitespace", "  pix   joão   silva  ", "pix joao silva"},
		{"mixed", "Transferência: João (reforma)!!", "transferencia joao reforma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"PIX recebido cliente João Silva",
		"PAG*LOJA-DECORAÇÕES 12/24",
		"   tabs\tand\nnewlines   ",
	}
	for _, in := range inputs {
		once := core.Normalize(in)
		twice := core.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"drops stopwords", "pix pago transferência conta", nil},
		{"drops short tokens", "ab c de cliente", []string{"cliente"}},
		{
			"preserves order",
			"PIX recebido cliente João Silva",
			[]string{"cliente", "joao", "silva"},
		},
		{
			"caps at six",
			"cortina persiana blackout romana painel horizontal vertical motorizada",
			[]string{"cortina", "persiana", "blackout", "romana", "painel", "horizontal"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ExtractKeywords(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/almacen-console/almacen-console/internal/invoice"
	_ "github.com/almacen-console/almacen-console/testing"
)

func TestSanitizeStripsDiacriticsAndNonLetters(t *testing.T) {
	cases := map[string]string{
		"Acme":                  "Acme",
		"José Pérez":            "JosePerez",
		"Ñandú S.A.S. 2024":     "NanduSAS",
		"Café & Azúcar Ltda.":   "CafeAzucarLtda",
		"  espacios   varios  ": "espaciosvarios",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equalf(t, want, invoice.Sanitize(in), "input %q", in)
	}
}

func TestFilenameConvention(t *testing.T) {
	on := time.Date(2026, 9, 1, 15, 4, 0, 0, time.UTC)

	got := invoice.Filename(invoice.Sale, "José Pérez", on, "9f8b1c2d-3e4f-4a5b-8c6d-112233445566")
	assert.Equal(t, "FV_JosePerez_20260901_33445566.pdf", got)

	got = invoice.Filename(invoice.Purchase, "Acme", on, "short")
	assert.Equal(t, "FC_Acme_20260901_short.pdf", got)
}

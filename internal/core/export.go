package core

// export.go serializes the product collection into the two AT stock file
// formats (Portaria 2/2015).
//
// Both outputs are assembled line by line. CSV fields are never quoted and the
// XML layout, escaping and indentation are byte-exact.

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatXML = "xml"
)

// utf8BOM prefixes the CSV output so spreadsheet software picks UTF-8.
const utf8BOM = "\uFEFF"

var csvHeader = []string{
	"ProductCategory",
	"ProductCode",
	"ProductDescription",
	"ProductNumberCode",
	"ClosingStockQuantity",
	"UnitOfMeasure",
}

// csvSanitizer removes everything that could break a row apart. The output
// has no quoting mechanism, so delimiters are dropped rather than escaped.
var csvSanitizer = strings.NewReplacer(
	"\n", " ",
	"\r", " ",
	"\t", " ",
	";", " ",
	`"`, "",
)

// xmlEscaper covers exactly the five predefined XML entities.
var xmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
)

func sanitizeCSVField(s string) string {
	return strings.TrimSpace(csvSanitizer.Replace(s))
}

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// GenerateCSV renders products as a semicolon-delimited AT stock file.
// In valued mode a Value column carrying the unit value is appended.
func GenerateCSV(products []Product, valued bool) []byte {
	header := csvHeader
	if valued {
		header = append(append([]string(nil), csvHeader...), "Value")
	}

	lines := make([]string, 0, len(products)+1)
	lines = append(lines, strings.Join(header, ";"))

	for _, p := range products {
		code := sanitizeCSVField(p.Code)
		row := []string{
			sanitizeCSVField(string(p.Category)),
			code,
			sanitizeCSVField(p.Description),
			code,
			FormatAmount(p.Quantity, ","),
			sanitizeCSVField(p.Unit),
		}
		if valued {
			row = append(row, FormatAmount(p.UnitValue, ","))
		}
		lines = append(lines, strings.Join(row, ";"))
	}

	return []byte(utf8BOM + strings.Join(lines, "\n"))
}

// StockHeader identifies the taxpayer and period of an XML stock file.
type StockHeader struct {
	TaxID      string
	FiscalYear string
	Created    time.Time
}

// GenerateXML renders products as an AT StockFile document. When valued is
// false every Value element is 0.00.
//
// Callers must not export a batch containing products with errors; Service
// enforces this.
func GenerateXML(products []Product, h StockHeader, valued bool) []byte {
	lines := make([]string, 0, 8+len(products)*9)
	lines = append(lines,
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<StockFile xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`,
		`  <StockHeader>`,
		`    <TaxRegistrationNumber>`+escapeXML(h.TaxID)+`</TaxRegistrationNumber>`,
		`    <FiscalYear>`+escapeXML(h.FiscalYear)+`</FiscalYear>`,
		`    <DateCreated>`+h.Created.Format(time.DateOnly)+`</DateCreated>`,
		`    <ProductStockIndex>1</ProductStockIndex>`,
		`  </StockHeader>`,
	)

	for _, p := range products {
		value := "0.00"
		if valued {
			value = FormatAmount(p.UnitValue, ".")
		}
		code := escapeXML(p.Code)
		lines = append(lines,
			`  <ProductStock>`,
			`    <ProductCategory>`+escapeXML(string(p.Category))+`</ProductCategory>`,
			`    <ProductCode>`+code+`</ProductCode>`,
			`    <ProductDescription>`+escapeXML(p.Description)+`</ProductDescription>`,
			`    <ProductNumberCode>`+code+`</ProductNumberCode>`,
			`    <ClosingStockQuantity>`+FormatAmount(p.Quantity, ".")+`</ClosingStockQuantity>`,
			`    <UnitOfMeasure>`+escapeXML(p.Unit)+`</UnitOfMeasure>`,
			`    <Value>`+value+`</Value>`,
			`  </ProductStock>`,
		)
	}

	lines = append(lines, `</StockFile>`)
	return []byte(strings.Join(lines, "\n"))
}

// ExportRequest describes a requested download.
type ExportRequest struct {
	Format     string `json:"format" validate:"required,oneof=csv xml"`
	TaxID      string `json:"tax_id" validate:"required,number,len=9"`
	FiscalYear string `json:"year" validate:"required,number,len=4"`
	Valued     bool   `json:"valued"`
}

// ExportFile is a rendered export ready to be downloaded.
type ExportFile struct {
	Name     string
	MIMEType string
	Content  []byte
}

var exportValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request fields and reports every failing field.
func (r ExportRequest) Validate() error {
	err := exportValidate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, exportFieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidExportRequest, strings.Join(msgs, "; "))
}

func exportFieldMessage(fe validator.FieldError) string {
	name := map[string]string{
		"Format":     "format",
		"TaxID":      "tax id",
		"FiscalYear": "fiscal year",
	}[fe.Field()]

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "number":
		return name + " must contain only digits"
	case "len":
		return name + " must be exactly " + fe.Param() + " digits"
	default:
		return name + " is invalid"
	}
}

// BuildExport renders products according to r. r must already be valid.
func BuildExport(products []Product, r ExportRequest, now time.Time) ExportFile {
	name := fmt.Sprintf("Stock_%s_%s.%s", r.TaxID, r.FiscalYear, r.Format)

	if r.Format == FormatXML {
		h := StockHeader{TaxID: r.TaxID, FiscalYear: r.FiscalYear, Created: now}
		return ExportFile{
			Name:     name,
			MIMEType: "application/xml",
			Content:  GenerateXML(products, h, r.Valued),
		}
	}

	return ExportFile{
		Name:     name,
		MIMEType: "text/csv",
		Content:  GenerateCSV(products, r.Valued),
	}
}

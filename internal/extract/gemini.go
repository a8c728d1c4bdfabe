// Package extract reads product lines out of documents (PDF invoices, scanned
// inventory sheets) with the Gemini API.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/JonMunkholm/stockfile/internal/core"
)

// ErrMalformedResponse is returned when the model answers with something
// that is not the expected JSON array.
var ErrMalformedResponse = errors.New("malformed extractor response")

// Config is everything the extractor needs. It is passed explicitly; there is
// no package-level client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// generator is the slice of the genai client used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements core.DocumentExtractor.
type Gemini struct {
	cfg Config
	gen generator
}

var _ core.DocumentExtractor = (*Gemini)(nil)

// NewGemini creates an extractor backed by the Gemini Developer API.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", core.ErrExtractorUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Gemini{cfg: cfg, gen: client.Models}, nil
}

const prompt = `Analisa este documento de inventário e extrai TODOS os artigos listados, sem exceção.
Regras da AT (Portugal):
1. Para cada artigo identifica código, designação, quantidade e valor unitário.
2. A categoria usa APENAS uma destas letras:
   M - mercadorias
   P - matérias-primas, subsidiárias e de consumo
   A - produtos acabados e intermédios
   S - subprodutos, desperdícios e refugos
   T - produtos e trabalhos em curso
3. Se a categoria não for explícita usa M.
4. Se a unidade de medida for omitida usa UN.
Devolve apenas o JSON estruturado.`

// responseSchema mirrors core.Candidate's JSON tags.
var responseSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"code":        {Type: genai.TypeString, Description: "Código ou referência do artigo (ProductCode)"},
			"description": {Type: genai.TypeString, Description: "Designação completa (ProductDescription)"},
			"type":        {Type: genai.TypeString, Description: "Categoria AT: M, P, A, S ou T"},
			"unit":        {Type: genai.TypeString, Description: "Unidade de medida (UnitOfMeasure), ex: UN, KG, MT"},
			"quantity":    {Type: genai.TypeNumber, Description: "Quantidade em stock (ClosingStockQuantity)"},
			"unitValue":   {Type: genai.TypeNumber, Description: "Preço unitário ou custo médio (Value)"},
			"suggestions": {Type: genai.TypeString, Description: "Nota de correção quando os dados são ambíguos"},
		},
		Required: []string{"code", "description", "type", "unit", "quantity"},
	},
}

// Extract sends the document to the model and decodes the candidate list.
func (g *Gemini) Extract(ctx context.Context, fileName, mimeType string, data []byte) ([]core.Candidate, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}}

	start := time.Now()
	resp, err := g.gen.GenerateContent(ctx, g.cfg.Model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("extract document: %w", err)
	}

	cands, err := decodeCandidates(responseText(resp))
	if err != nil {
		return nil, fmt.Errorf("extract document: %w", err)
	}

	slog.Debug("document extracted",
		"file", fileName,
		"model", g.cfg.Model,
		"candidates", len(cands),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return cands, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func decodeCandidates(text string) ([]core.Candidate, error) {
	text = strings.TrimSpace(text)
	// Some models wrap JSON in a markdown fence despite the MIME type
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var cands []core.Candidate
	if err := json.Unmarshal([]byte(text), &cands); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return cands, nil
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"concilia/internal/core"
)

// CategorySuggester is the optional AI fallback consulted when neither the
// history-based engine nor the pattern store produced a suggestion. It is
// strictly advisory and never invoked to paper over a store failure.
type CategorySuggester interface {
	SuggestCategory(ctx context.Context, description string, direction core.LedgerDirection, categories []core.Category) (*core.Suggestion, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// categoryPick is the structured output contract for the model. The category
// name must be one of the offered names; NoMatch signals abstention.
type categoryPick struct {
	CategoryName string  `json:"category_name" jsonschema_description:"The exact name of the chosen category from the provided list, or empty when no category fits"`
	Confidence   float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning    string  `json:"reasoning" jsonschema_description:"One short sentence explaining the choice"`
	NoMatch      bool    `json:"no_match" jsonschema_description:"True when none of the provided categories fits the description"`
}

func (a *Agent) SuggestCategory(ctx context.Context, description string, direction core.LedgerDirection, categories []core.Category) (*core.Suggestion, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	var names []string
	byName := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		names = append(names, "- "+c.Name)
		byName[c.Name] = c
	}

	prompt := fmt.Sprintf(`You categorize bank transaction descriptions for a Brazilian window-treatment business.
Pick the single best category for the description below, or abstain when none fits.
Rules:
1. Use ONLY category names from the list.
2. Set no_match to true instead of guessing.
3. Provide a confidence score (0.0-1.0).

Direction: %s
Categories:
%s

Description: %s`, direction, strings.Join(names, "\n"), description)

	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "category_pick",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A single category pick for a bank transaction description"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var pick categoryPick
	if err := json.Unmarshal([]byte(content), &pick); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if pick.NoMatch || pick.CategoryName == "" {
		return nil, nil
	}

	category, ok := byName[pick.CategoryName]
	if !ok {
		// model invented a name outside the list; treat as abstention
		return nil, nil
	}

	confidence := int(pick.Confidence * 100)
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	return &core.Suggestion{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Direction:    category.Direction,
		Confidence:   confidence,
		Reason:       pick.Reasoning,
	}, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v categoryPick
	return reflector.Reflect(v)
}

// Package ai generates the sales-prospecting candidate list from the
// journal's counterparties via a search-grounded structured generation call.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"github.com/Traumerei-sf/tokumei-AI/internal/core"
)

// MaxProspects caps the generated candidate list.
const MaxProspects = 10

// Prospect is one recommended sales target. The JSON keys are the exact
// column names the downloadable list carries.
type Prospect struct {
	CompanyName string `json:"会社名" jsonschema_description:"推薦する企業の正式名称"`
	HomepageURL string `json:"ホームページURL" jsonschema_description:"企業の公式サイトURL"`
	Industry    string `json:"業種" jsonschema_description:"企業の業種分類"`
	Description string `json:"事業内容" jsonschema_description:"主な事業内容の簡潔な説明"`
	Region      string `json:"登記地域" jsonschema_description:"本社または登記上の所在地域"`
}

// ProspectList is the structured generation output shape.
type ProspectList struct {
	BusinessList []Prospect `json:"business_list" jsonschema_description:"営業先候補のリスト（最大10件）"`
}

// ProspectorService generates a prospect list from a fully assembled prompt.
type ProspectorService interface {
	GenerateProspects(ctx context.Context, prompt string) (*ProspectList, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// GenerateProspects runs one structured-output generation call with web
// search enabled, so the model can ground its recommendations in live
// company data. The caller is responsible for degrading to an empty list on
// error; a failed prospecting call must never abort an analysis run.
func (a *Agent) GenerateProspects(ctx context.Context, prompt string) (*ProspectList, error) {
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
		Tools: []responses.ToolUnionParam{{
			OfWebSearchPreview: &responses.WebSearchToolParam{
				Type: responses.WebSearchToolTypeWebSearchPreview,
			},
		}},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "business_prospect_list",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Recommended sales prospects derived from existing counterparties"),
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

	var list ProspectList
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if len(list.BusinessList) > MaxProspects {
		list.BusinessList = list.BusinessList[:MaxProspects]
	}
	return &list, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v ProspectList
	return reflector.Reflect(v)
}

// salesAccountKeywords mark the accounts whose counterparties count as the
// company's customers for prospecting purposes.
var salesAccountKeywords = []string{"売上高", "売掛金", "受取手形"}

// ExtractPartners pulls the distinct sales counterparties out of the
// normalized journal: partners on either side of a row whose account label
// contains a sales-account keyword. Sorted for a stable prompt.
func ExtractPartners(journal *core.JournalTable) []string {
	set := make(map[string]bool)
	for i := range journal.Records {
		rec := &journal.Records[i]
		if containsAny(rec.DebitAccount, salesAccountKeywords) {
			if p := strings.TrimSpace(rec.DebitPartner); p != "" {
				set[p] = true
			}
		}
		if containsAny(rec.CreditAccount, salesAccountKeywords) {
			if p := strings.TrimSpace(rec.CreditPartner); p != "" {
				set[p] = true
			}
		}
	}
	partners := make([]string, 0, len(set))
	for p := range set {
		partners = append(partners, p)
	}
	sort.Strings(partners)
	return partners
}

// BuildProspectPrompt joins the base prompt with the counterparty roster.
func BuildProspectPrompt(basePrompt string, partners []string) string {
	return fmt.Sprintf("%s\n\n【既存取引先一覧】\n%s", basePrompt, strings.Join(partners, "\n"))
}

func containsAny(account string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(account, kw) {
			return true
		}
	}
	return false
}

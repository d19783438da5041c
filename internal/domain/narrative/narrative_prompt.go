package narrative

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/heritage-routes-api/internal/types"
)

// buildNarrativePrompt assembles the generation prompt from the object's known
// fields. The model is told to stay inside the supplied context so it cannot
// invent architects, dates or events for sparsely documented objects.
func buildNarrativePrompt(obj *types.HeritageObject) string {
	var context strings.Builder
	context.WriteString(fmt.Sprintf("Name: %s\n", obj.Name))

	appendField := func(label string, value *string) {
		if value != nil && *value != "" {
			context.WriteString(fmt.Sprintf("%s: %s\n", label, *value))
		}
	}
	appendField("Address", obj.Address)
	appendField("District", obj.District)
	appendField("Administrative area", obj.AdmArea)
	appendField("Type", obj.ObjectType)
	appendField("Category", obj.Category)
	appendField("Protection status", obj.SecurityStatus)
	appendField("Build year", obj.BuildYear)
	appendField("Description", obj.Description)

	return fmt.Sprintf(`You are a tour guide for cultural heritage sites. Write a short story
(5-8 sentences) about the heritage object below. The visitor is ALREADY standing
next to the object, so never say "if you are nearby". Use ONLY the data in the
context. Do not invent facts (architects, events, dates) that are not in the
context. Keep the tone friendly, without pathos and without lists. Do not end
with a generic tip; the closing sentence must rely on the context.

Context:
%s`, context.String())
}

package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/botflow/pkg/domain"
)

func TestRender_AllOccurrences(t *testing.T) {
	out := Render("Hi {name}, you chose {name}", map[string]domain.VariableRecord{
		"name": domain.NewVariableRecord("Alex"),
	}, nil)
	assert.Equal(t, "Hi Alex, you chose Alex", out)
}

func TestRender_SecondPassUsesKnownVariables(t *testing.T) {
	out := Render("{city}: welcome {first_name}", map[string]domain.VariableRecord{
		"city": domain.NewVariableRecord("Lisbon"),
	}, map[string]string{"first_name": "Rui", "city": "Porto"})

	assert.Equal(t, "Lisbon: welcome Rui", out)
}

func TestRender_NullValueLeftForSecondPass(t *testing.T) {
	out := Render("Hello {name}", map[string]domain.VariableRecord{
		"name": domain.Missing(),
	}, map[string]string{})
	assert.Equal(t, "Hello {name}", out)
}

func TestRender_EmptyValueIsSubstituted(t *testing.T) {
	out := Render("[{note}]", map[string]domain.VariableRecord{
		"note": domain.NewVariableRecord(""),
	}, nil)
	assert.Equal(t, "[]", out)
}

func TestRender_UnknownPlaceholdersStay(t *testing.T) {
	assert.Equal(t, "Hi {who}", Render("Hi {who}", nil, map[string]string{"other": "x"}))
}

func TestRender_Idempotent(t *testing.T) {
	ruleVars := map[string]domain.VariableRecord{"name": domain.NewVariableRecord("Alex")}
	known := map[string]string{"plan": "pro"}

	once := Render("{name} on {plan} {unknown}", ruleVars, known)
	twice := Render(once, ruleVars, known)
	assert.Equal(t, once, twice)
}

func TestSelectTemplate_EmptyInheritsNodeText(t *testing.T) {
	node := &domain.Node{ID: "n", Text: "Welcome!"}

	assert.Equal(t, "Welcome!", SelectTemplate(domain.ConditionRule{Template: ""}, node))
	assert.Equal(t, "Welcome!", SelectTemplate(domain.ConditionRule{Template: "  "}, node))
	assert.Equal(t, "Custom", SelectTemplate(domain.ConditionRule{Template: "Custom"}, node))
}

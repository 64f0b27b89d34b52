package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/model"
)

func TestExtract_SingleFunctionDeclaration(t *testing.T) {
	result := Extract("pub fn calculate_sum(a: i32, b: i32) -> i32 {\n    a + b\n}", "rust")

	require.Len(t, result.Entities, 1)
	entity := result.Entities[0]
	assert.Equal(t, model.EntityTypeFunction, entity.EntityType)
	assert.Equal(t, "calculate_sum", entity.Name)
	assert.Equal(t, 0.9, entity.Confidence)
	assert.Equal(t, 1, entity.StartLine)
}

func TestExtract_ImportCreatesModuleAndImportsEdge(t *testing.T) {
	text := "class Widget {\n}\nimport widgets.core\n"
	result := Extract(text, "python")

	var sawModule bool
	for _, e := range result.Entities {
		if e.EntityType == model.EntityTypeModule && e.Name == "widgets.core" {
			sawModule = true
			assert.Equal(t, 0.8, e.Confidence)
		}
	}
	assert.True(t, sawModule)

	var sawImports bool
	for _, r := range result.Relationships {
		if r.RelationshipType == model.RelImports && r.FromName == "Widget" && r.ToName == "widgets.core" {
			sawImports = true
		}
	}
	assert.True(t, sawImports)
}

func TestExtract_ImplForEmitsImplements(t *testing.T) {
	result := Extract("impl Greeter for Robot {}", "rust")

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, model.RelImplements, rel.RelationshipType)
	assert.Equal(t, "Robot", rel.FromName)
	assert.Equal(t, "Greeter", rel.ToName)
	assert.Equal(t, 0.95, rel.Confidence)
}

func TestExtract_ExtendsEmitsExtends(t *testing.T) {
	result := Extract("class Admin extends User {}", "java")

	var sawExtends bool
	for _, r := range result.Relationships {
		if r.RelationshipType == model.RelExtends && r.FromName == "Admin" && r.ToName == "User" {
			sawExtends = true
		}
	}
	assert.True(t, sawExtends)
}

func TestExtract_ApiEndpointMention(t *testing.T) {
	result := Extract("Route: POST /api/v1/widgets/{id}\n", "go")

	require.Len(t, result.Entities, 1)
	assert.Equal(t, model.EntityTypeCodeEntity, result.Entities[0].EntityType)
	assert.Equal(t, 0.85, result.Entities[0].Confidence)
}

func TestExtract_TicketKey(t *testing.T) {
	result := Extract("Fixes ABC-123 by clamping the range", "go")

	var sawTicket bool
	for _, e := range result.Entities {
		if e.EntityType == model.EntityTypeIssue && e.Name == "ABC-123" {
			sawTicket = true
		}
	}
	assert.True(t, sawTicket)
}

func TestExtract_CallsOnlyDeclaredCallees(t *testing.T) {
	text := "func main() {\n    helper()\n    if true {}\n}\nfunc helper() {}\n"
	result := Extract(text, "go")

	var calls []model.NamedRelationship
	for _, r := range result.Relationships {
		if r.RelationshipType == model.RelCalls {
			calls = append(calls, r)
		}
	}
	require.Len(t, calls, 1)
	assert.Equal(t, "main", calls[0].FromName)
	assert.Equal(t, "helper", calls[0].ToName)
}

func TestExtract_ContainsEdgeFromClassToFunction(t *testing.T) {
	text := "class Service {\n    func run() {}\n}\n"
	result := Extract(text, "go")

	var sawContains bool
	for _, r := range result.Relationships {
		if r.RelationshipType == model.RelContains && r.FromName == "Service" && r.ToName == "run" {
			sawContains = true
			assert.Equal(t, 0.8, r.Confidence)
		}
	}
	assert.True(t, sawContains)
}

func TestExtract_EmptyTextProducesNoEntities(t *testing.T) {
	result := Extract("", "go")
	assert.Empty(t, result.Entities)
	assert.Empty(t, result.Relationships)
}

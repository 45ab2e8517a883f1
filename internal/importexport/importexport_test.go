package importexport

import "testing"

func TestDetectColumnsAcceptsAliases(t *testing.T) {
	header := []string{"ID", "Component", "Name", "SP", "Dependências", "Priority"}
	col := detectColumns(header)
	for _, field := range []string{"id", "component", "nome", "story_point", "deps", "prioridade"} {
		if _, ok := col[field]; !ok {
			t.Fatalf("expected field %q to be detected from header %v", field, header)
		}
	}
}

func TestProcessDependenciesFiltersSelfAndUnknown(t *testing.T) {
	sheetIDs := map[string]struct{}{"US-002": {}}
	existingIDs := map[string]struct{}{"US-999": {}}
	valid, invalid := processDependencies("US-001, US-002, US-999, US-404", sheetIDs, existingIDs, "US-001")
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid deps, got %v", valid)
	}
	if len(invalid) != 2 {
		t.Fatalf("expected 2 invalid deps (self + unknown), got %v", invalid)
	}
}

func TestProcessDependenciesEmptyValue(t *testing.T) {
	valid, invalid := processDependencies("   ", nil, nil, "US-001")
	if valid != nil || invalid != nil {
		t.Fatalf("expected nil/nil for blank deps value, got %v / %v", valid, invalid)
	}
}

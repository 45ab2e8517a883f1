// Package importexport reads and writes the backlog as a spreadsheet,
// grounded on the multi-phase import/validate/dedupe pipeline of
// original_source's OpenpyxlExcelService, rebuilt on top of excelize
// since no in-pack example repo carries a spreadsheet library.
package importexport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kingrea/waveplan/internal/domain"
)

const sheetName = "Backlog"

// ExportColumns is the fixed 13-column export order.
var ExportColumns = []string{
	"Prioridade", "Feature", "Onda", "ID", "Component", "Nome", "Status",
	"Desenvolvedor", "Dependências", "SP", "Início", "Fim", "Duração",
}

// columnAliases maps a normalized field name to every header spelling that
// resolves to it, case-insensitively.
var columnAliases = map[string][]string{
	"id":            {"id"},
	"component":     {"component"},
	"nome":          {"nome", "name"},
	"story_point":   {"storypoint", "sp"},
	"deps":          {"deps", "dependencias", "dependências"},
	"status":        {"status"},
	"desenvolvedor": {"desenvolvedor", "developer", "developer_id"},
	"prioridade":    {"prioridade", "priority"},
	"feature":       {"feature"},
	"onda":          {"onda", "wave"},
}

// Stats counts the outcome of one import pass.
type Stats struct {
	TotalProcessadas    int
	TotalImportadas     int
	IgnoradasDuplicadas int
	IgnoradasInvalidas  int
	DepsIgnoradas       int
	Warnings            []string
}

// Row is one imported story before it has been assigned a feature; Feature
// and Wave are carried as hints for the caller's use case to resolve.
type Row struct {
	Story       domain.Story
	FeatureName string
	Wave        int
}

func detectColumns(header []string) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := make(map[string]int)
	for field, aliases := range columnAliases {
		for idx, name := range normalized {
			for _, alias := range aliases {
				if name == alias {
					out[field] = idx
				}
			}
		}
	}
	return out
}

func cell(row []string, col map[string]int, field string) string {
	idx, ok := col[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Import reads stories from an .xlsx file. existingIDs is the set of story
// ids already present in the store, consulted when validating dependency
// references. Required columns are id, component, nome, and a story-point
// column (storypoint|sp); a missing id column is an error, and id is
// generated as US-<3-digit sequence> when a row's id cell is blank.
func Import(path string, existingIDs map[string]struct{}) ([]Row, Stats, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("importexport: open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		rows, err = f.GetRows(f.GetSheetList()[0])
		if err != nil {
			return nil, Stats{}, fmt.Errorf("importexport: read sheet: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, Stats{}, fmt.Errorf("importexport: %s has no rows", path)
	}

	colMap := detectColumns(rows[0])
	for _, required := range []string{"id", "component", "nome"} {
		if _, ok := colMap[required]; !ok {
			return nil, Stats{}, fmt.Errorf("importexport: missing required column %q", required)
		}
	}
	if _, ok := colMap["story_point"]; !ok {
		return nil, Stats{}, fmt.Errorf("importexport: no story point column found (use SP or StoryPoint)")
	}
	_, prioridadePresent := colMap["prioridade"]

	var stats Stats
	type pending struct {
		id    string
		row   Row
		rowNo int
		deps  string
	}
	var temp []pending
	idCounts := make(map[string]int)
	generated := 1

	for i, raw := range rows[1:] {
		rowNo := i + 2
		stats.TotalProcessadas++

		component := cell(raw, colMap, "component")
		name := cell(raw, colMap, "nome")
		if component == "" {
			stats.IgnoradasInvalidas++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("row %d: empty component, skipped", rowNo))
			continue
		}
		if name == "" {
			stats.IgnoradasInvalidas++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("row %d: empty name, skipped", rowNo))
			continue
		}

		id := cell(raw, colMap, "id")
		if id == "" {
			id = fmt.Sprintf("US-%03d", generated)
			generated++
		}
		idCounts[id]++

		spRaw := cell(raw, colMap, "story_point")
		var sp *domain.StoryPoint
		if spRaw != "" {
			val, convErr := strconv.Atoi(spRaw)
			point := domain.StoryPoint(val)
			if convErr != nil || !point.Valid() {
				stats.IgnoradasInvalidas++
				stats.Warnings = append(stats.Warnings, fmt.Sprintf("row %d: invalid story point %q, skipped", rowNo, spRaw))
				continue
			}
			sp = &point
		}

		status := domain.StatusBacklog
		if raw := strings.ToUpper(cell(raw, colMap, "status")); raw != "" {
			candidate := domain.Status(raw)
			if candidate.Valid() {
				status = candidate
			} else {
				stats.Warnings = append(stats.Warnings, fmt.Sprintf("row %d: invalid status %q, defaulting to BACKLOG", rowNo, raw))
			}
		}

		var devID *string
		if dev := cell(raw, colMap, "desenvolvedor"); dev != "" {
			devID = &dev
		}

		priority := 0
		if p := cell(raw, colMap, "prioridade"); p != "" {
			if v, convErr := strconv.Atoi(p); convErr == nil && v >= 0 {
				priority = v
			}
		}

		featureName := cell(raw, colMap, "feature")
		wave := 0
		if w := cell(raw, colMap, "onda"); w != "" {
			if v, convErr := strconv.Atoi(w); convErr == nil && v > 0 {
				wave = v
			}
		}

		story := domain.Story{
			ID:          id,
			Component:   component,
			Name:        name,
			Priority:    priority,
			StoryPoint:  sp,
			Status:      status,
			DeveloperID: devID,
		}
		temp = append(temp, pending{
			id:    id,
			row:   Row{Story: story, FeatureName: featureName, Wave: wave},
			rowNo: rowNo,
			deps:  cell(raw, colMap, "deps"),
		})
	}

	duplicated := make(map[string]struct{})
	for id, count := range idCounts {
		if count > 1 {
			duplicated[id] = struct{}{}
			stats.IgnoradasDuplicadas += count
			for i := 0; i < count; i++ {
				stats.Warnings = append(stats.Warnings, fmt.Sprintf("id %q duplicated in sheet, %d rows skipped", id, count))
			}
		}
	}

	allIDs := make(map[string]struct{})
	for _, p := range temp {
		if _, dup := duplicated[p.id]; !dup {
			allIDs[p.id] = struct{}{}
		}
	}

	var out []Row
	for _, p := range temp {
		if _, dup := duplicated[p.id]; dup {
			continue
		}
		deps, invalidDeps := processDependencies(p.deps, allIDs, existingIDs, p.id)
		p.row.Story.Dependencies = deps
		for _, bad := range invalidDeps {
			stats.DepsIgnoradas++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("row %d: dependency %q not found, removed from %q", p.rowNo, bad, p.id))
		}
		out = append(out, p.row)
	}

	if !prioridadePresent {
		for i := range out {
			out[i].Story.Priority = i + 1
		}
	}

	stats.TotalImportadas = len(out)
	return out, stats, nil
}

func processDependencies(raw string, sheetIDs, existingIDs map[string]struct{}, selfID string) (valid, invalid []string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	for _, dep := range strings.Split(raw, ",") {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			continue
		}
		if dep == selfID {
			invalid = append(invalid, dep)
			continue
		}
		_, inSheet := sheetIDs[dep]
		_, inStore := existingIDs[dep]
		if inSheet || inStore {
			valid = append(valid, dep)
		} else {
			invalid = append(invalid, dep)
		}
	}
	return valid, invalid
}

// Export writes stories to path as a 13-column .xlsx sheet, resolving
// feature name and wave through features keyed by story.FeatureID.
func Export(path string, stories []domain.Story, features map[string]domain.Feature) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = sheetName
	f.SetSheetName(f.GetSheetList()[0], sheet)

	for i, col := range ExportColumns {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cellRef, col)
	}

	for r, story := range stories {
		row := r + 2
		featureName := ""
		wave := 0
		if story.FeatureID != nil {
			if feat, ok := features[*story.FeatureID]; ok {
				featureName = feat.Name
				wave = feat.Wave
			}
		}
		devID := ""
		if story.DeveloperID != nil {
			devID = *story.DeveloperID
		}
		sp := 0
		if story.StoryPoint != nil {
			sp = int(*story.StoryPoint)
		}
		start, end, duration := "", "", ""
		if story.StartDate != nil {
			start = story.StartDate.Format("02/01/2006")
		}
		if story.EndDate != nil {
			end = story.EndDate.Format("02/01/2006")
		}
		if story.Duration != nil {
			duration = strconv.Itoa(*story.Duration)
		}

		values := []any{
			story.Priority, featureName, waveOrBlank(wave), story.ID, story.Component,
			story.Name, string(story.Status), devID, strings.Join(story.Dependencies, ", "),
			sp, start, end, duration,
		}
		for i, v := range values {
			cellRef, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cellRef, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("importexport: save %s: %w", path, err)
	}
	return nil
}

func waveOrBlank(wave int) any {
	if wave == 0 {
		return ""
	}
	return wave
}

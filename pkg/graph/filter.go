package graph

import (
	"strings"
	"unicode/utf8"

	"docgraph/pkg/common"
)

const minEntityNameLength = 3

// genericEntityNames are terms too vague to be graph nodes.
var genericEntityNames = map[string]struct{}{
	"the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "system": {}, "method": {}, "approach": {},
	"technique": {}, "process": {},
}

// genericRelationVerbs are connection phrases that carry no information.
var genericRelationVerbs = map[string]struct{}{
	"related": {}, "connected": {}, "associated": {}, "linked": {},
	"has": {}, "uses": {}, "involves": {},
}

// filterExtraction applies the quality rules to a raw model response:
// entities need a specific name of useful length, relationships need a
// specific verb and both endpoints among the kept entities.
func filterExtraction(res extractResponse) ([]common.Entity, []common.Relationship) {
	var entities []common.Entity
	kept := make(map[string]struct{})

	for _, e := range res.Entities {
		name := strings.TrimSpace(e.Name)
		if utf8.RuneCountInString(name) < minEntityNameLength {
			continue
		}
		key := strings.ToLower(name)
		if _, generic := genericEntityNames[key]; generic {
			continue
		}
		if _, seen := kept[key]; seen {
			continue
		}
		kept[key] = struct{}{}
		entities = append(entities, common.Entity{
			Name: name,
			Type: strings.TrimSpace(e.Type),
		})
	}

	var relationships []common.Relationship
	for _, r := range res.Relationships {
		source := strings.TrimSpace(r.FromEntity)
		target := strings.TrimSpace(r.ToEntity)
		relType := strings.TrimSpace(r.Type)

		if source == "" || target == "" || relType == "" {
			continue
		}
		if _, generic := genericRelationVerbs[strings.ToLower(relType)]; generic {
			continue
		}
		if _, ok := kept[strings.ToLower(source)]; !ok {
			continue
		}
		if _, ok := kept[strings.ToLower(target)]; !ok {
			continue
		}

		relationships = append(relationships, common.Relationship{
			Source: source,
			Target: target,
			Type:   relType,
		})
	}

	return entities, relationships
}

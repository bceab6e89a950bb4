package graph

import (
	"reflect"
	"testing"

	"docgraph/pkg/common"
)

func TestFilterExtraction_Entities(t *testing.T) {
	res := extractResponse{
		Entities: []extractEntity{
			{Name: "Bitcoin", Type: "TECHNOLOGY"},
			{Name: "it", Type: "CONCEPT"},
			{Name: "AI", Type: "CONCEPT"},
			{Name: "System", Type: "CONCEPT"},
			{Name: "  Proof-of-Work  ", Type: "CONCEPT"},
			{Name: "bitcoin", Type: "PRODUCT"},
		},
	}

	entities, _ := filterExtraction(res)
	want := []common.Entity{
		{Name: "Bitcoin", Type: "TECHNOLOGY"},
		{Name: "Proof-of-Work", Type: "CONCEPT"},
	}
	if !reflect.DeepEqual(entities, want) {
		t.Fatalf("filterExtraction() entities = %v, want %v", entities, want)
	}
}

func TestFilterExtraction_Relationships(t *testing.T) {
	res := extractResponse{
		Entities: []extractEntity{
			{Name: "Proof-of-Work", Type: "CONCEPT"},
			{Name: "Double-Spending", Type: "CONCEPT"},
		},
		Relationships: []extractRelationship{
			{FromEntity: "Proof-of-Work", ToEntity: "Double-Spending", Type: "prevents"},
			{FromEntity: "Proof-of-Work", ToEntity: "Double-Spending", Type: "related"},
			{FromEntity: "Proof-of-Work", ToEntity: "Unknown Entity", Type: "secures"},
			{FromEntity: "", ToEntity: "Double-Spending", Type: "prevents"},
			{FromEntity: "proof-of-work", ToEntity: "DOUBLE-SPENDING", Type: "mitigates"},
		},
	}

	_, relationships := filterExtraction(res)
	want := []common.Relationship{
		{Source: "Proof-of-Work", Target: "Double-Spending", Type: "prevents"},
		{Source: "proof-of-work", Target: "DOUBLE-SPENDING", Type: "mitigates"},
	}
	if !reflect.DeepEqual(relationships, want) {
		t.Fatalf("filterExtraction() relationships = %v, want %v", relationships, want)
	}
}

func TestMergeExtractions(t *testing.T) {
	results := []common.ExtractionResult{
		{
			ChunkIndex: 0,
			Entities: []common.Entity{
				{Name: "Bitcoin", Type: "TECHNOLOGY"},
				{Name: "Satoshi Nakamoto", Type: "PERSON"},
			},
			Relationships: []common.Relationship{
				{Source: "Satoshi Nakamoto", Target: "Bitcoin", Type: "created"},
			},
		},
		{
			ChunkIndex: 1,
			Entities: []common.Entity{
				{Name: "BITCOIN", Type: "PRODUCT"},
				{Name: "Proof-of-Work", Type: "CONCEPT"},
			},
			Relationships: []common.Relationship{
				{Source: "Satoshi Nakamoto", Target: "Bitcoin", Type: "Created"},
				{Source: "Bitcoin", Target: "Proof-of-Work", Type: "builds on"},
			},
		},
	}

	entities, relationships := MergeExtractions(results)

	wantEntities := []common.Entity{
		{Name: "Bitcoin", Type: "TECHNOLOGY"},
		{Name: "Satoshi Nakamoto", Type: "PERSON"},
		{Name: "Proof-of-Work", Type: "CONCEPT"},
	}
	if !reflect.DeepEqual(entities, wantEntities) {
		t.Fatalf("MergeExtractions() entities = %v, want %v", entities, wantEntities)
	}

	wantRelationships := []common.Relationship{
		{Source: "Satoshi Nakamoto", Target: "Bitcoin", Type: "created"},
		{Source: "Bitcoin", Target: "Proof-of-Work", Type: "builds on"},
	}
	if !reflect.DeepEqual(relationships, wantRelationships) {
		t.Fatalf("MergeExtractions() relationships = %v, want %v", relationships, wantRelationships)
	}
}

func TestEntityKey(t *testing.T) {
	if EntityKey("  Proof-of-Work ") != "proof-of-work" {
		t.Fatalf("EntityKey() = %q, want %q", EntityKey("  Proof-of-Work "), "proof-of-work")
	}
}

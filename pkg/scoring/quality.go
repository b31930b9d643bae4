package scoring

import (
	"info-seeker-be/pkg/sources"
)

type ConfidenceLevel string

const (
	LevelHigh   ConfidenceLevel = "high"
	LevelMedium ConfidenceLevel = "medium"
	LevelLow    ConfidenceLevel = "low"
)

type Completeness string

const (
	Comprehensive Completeness = "comprehensive"
	Adequate      Completeness = "adequate"
	Basic         Completeness = "basic"
)

// Analysis describes a composed answer.
type Analysis struct {
	WordCount       int             `json:"word_count"`
	HasCitations    bool            `json:"has_citations"`
	HasStructure    bool            `json:"has_structure"`
	SourceCount     int             `json:"source_count"`
	DistinctDomains int             `json:"distinct_domains"`
	QualityScore    float64         `json:"quality_score"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	Completeness    Completeness    `json:"completeness"`
}

// Quality scores the composed answer and blends it with the final confidence.
func (e *Engine) Quality(answer string, list []sources.Source, confidence float64) float64 {
	return e.Analyze(answer, list, confidence).QualityScore
}

func (e *Engine) Analyze(answer string, list []sources.Source, confidence float64) Analysis {
	c := e.cfg
	a := Analysis{
		WordCount:       len(words(answer)),
		HasCitations:    citationPattern.MatchString(answer),
		HasStructure:    structurePattern.MatchString(answer),
		SourceCount:     len(list),
		DistinctDomains: distinctHosts(list),
	}

	q := c.QualityBase
	if a.WordCount > c.WordsShort {
		q += c.WordsShortBonus
	}
	if a.WordCount > c.WordsLong {
		q += c.WordsLongBonus
	}
	if a.HasCitations {
		q += c.CitationBonus
	}
	if a.HasStructure {
		q += c.StructureBonus
	}
	if a.SourceCount >= c.SourcesFew {
		q += c.SourcesFewBonus
	}
	if a.SourceCount >= c.SourcesMany {
		q += c.SourcesManyBonus
	}
	if a.DistinctDomains >= c.DiverseDomains {
		q += c.DiversityBonus
	}
	if countPresent(answer, c.CoverageIndicators) > 0 {
		q += c.CoverageBonus
	}
	if countPresent(answer, c.BalanceIndicators) > 0 {
		q += c.BalanceBonus
	}

	confidence = clamp(confidence, c.Floor, c.Ceiling)
	// The raw sum may exceed 1; only the blended score is clamped.
	q = c.QualityWeight*q + c.ConfidenceWeight*confidence
	a.QualityScore = clamp(q, c.Floor, c.Ceiling)

	switch {
	case a.QualityScore > c.HighConfidenceLevel:
		a.ConfidenceLevel = LevelHigh
	case a.QualityScore > c.MediumConfidenceLevel:
		a.ConfidenceLevel = LevelMedium
	default:
		a.ConfidenceLevel = LevelLow
	}

	switch {
	case a.WordCount > c.WordsLong && a.HasCitations && a.HasStructure:
		a.Completeness = Comprehensive
	case a.WordCount > 150:
		a.Completeness = Adequate
	default:
		a.Completeness = Basic
	}
	return a
}

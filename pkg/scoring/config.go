package scoring

// Config holds every weight, increment and threshold used by the engine.
// The defaults reproduce the tuned production values.
type Config struct {
	Floor           float64
	Ceiling         float64
	FallbackCeiling float64

	// Confidence blend when a fact check ran.
	BaseWeight      float64
	FactCheckWeight float64

	NeutralBase        float64
	PositiveIncrement  float64
	NegativeIncrement  float64
	AuthorityBonus     float64
	PositiveIndicators []string
	NegativeIndicators []string

	FactCheckPositive     []string
	FactCheckNegative     []string
	FactCheckPositiveBase float64
	FactCheckPositiveStep float64
	FactCheckNegativeBase float64
	FactCheckNegativeStep float64
	FactCheckTie          float64

	FallbackBase           float64
	FallbackFewSources     int
	FallbackFewBonus       float64
	FallbackManySources    int
	FallbackManyBonus      float64
	FallbackAuthorityBonus float64

	// Quality blend with final confidence.
	QualityWeight    float64
	ConfidenceWeight float64

	QualityBase           float64
	WordsShort            int
	WordsShortBonus       float64
	WordsLong             int
	WordsLongBonus        float64
	CitationBonus         float64
	StructureBonus        float64
	SourcesFew            int
	SourcesFewBonus       float64
	SourcesMany           int
	SourcesManyBonus      float64
	DiverseDomains        int
	DiversityBonus        float64
	CoverageBonus         float64
	BalanceBonus          float64
	CoverageIndicators    []string
	BalanceIndicators     []string
	HighConfidenceLevel   float64
	MediumConfidenceLevel float64

	// AuthorityDomains are host suffixes treated as high-authority.
	// Bare labels such as "gov" match top-level domains.
	AuthorityDomains []string
}

// DefaultConfig returns the production scoring constants.
func DefaultConfig() Config {
	return Config{
		Floor:           0.1,
		Ceiling:         0.95,
		FallbackCeiling: 0.9,

		BaseWeight:      0.6,
		FactCheckWeight: 0.4,

		NeutralBase:        0.5,
		PositiveIncrement:  0.05,
		NegativeIncrement:  0.1,
		AuthorityBonus:     0.2,
		PositiveIndicators: []string{"accurate", "reliable", "consistent", "credible", "verified", "confirmed"},
		NegativeIndicators: []string{"inaccurate", "unreliable", "inconsistent", "biased", "unverified", "questionable", "contradictory"},

		FactCheckPositive:     []string{"confirmed", "verified", "accurate", "correct", "true", "supported"},
		FactCheckNegative:     []string{"false", "incorrect", "disputed", "unverified", "contradicted"},
		FactCheckPositiveBase: 0.8,
		FactCheckPositiveStep: 0.05,
		FactCheckNegativeBase: 0.3,
		FactCheckNegativeStep: 0.1,
		FactCheckTie:          0.6,

		FallbackBase:           0.3,
		FallbackFewSources:     3,
		FallbackFewBonus:       0.2,
		FallbackManySources:    5,
		FallbackManyBonus:      0.1,
		FallbackAuthorityBonus: 0.3,

		QualityWeight:    0.7,
		ConfidenceWeight: 0.3,

		QualityBase:           0.3,
		WordsShort:            100,
		WordsShortBonus:       0.1,
		WordsLong:             300,
		WordsLongBonus:        0.05,
		CitationBonus:         0.25,
		StructureBonus:        0.15,
		SourcesFew:            3,
		SourcesFewBonus:       0.1,
		SourcesMany:           5,
		SourcesManyBonus:      0.05,
		DiverseDomains:        3,
		DiversityBonus:        0.1,
		CoverageBonus:         0.05,
		BalanceBonus:          0.05,
		CoverageIndicators:    []string{"overview", "summary", "conclusion", "key points", "important", "significant"},
		BalanceIndicators:     []string{"however", "although", "on the other hand", "alternatively", "different", "various"},
		HighConfidenceLevel:   0.8,
		MediumConfidenceLevel: 0.6,

		AuthorityDomains: []string{
			"wikipedia.org", "arxiv.org", "nature.com", "sciencedirect.com",
			"pubmed.ncbi.nlm.nih.gov", "scholar.google.com", "jstor.org",
			"reuters.com", "bbc.com", "cnn.com", "nytimes.com", "washingtonpost.com",
			"gov", "edu", "org",
		},
	}
}

package research

import (
	"time"

	"github.com/OFFIS-RIT/osint/pkg/parse"
	"github.com/OFFIS-RIT/osint/pkg/validate"
)

// Client runs the report pipeline over collected research output.
//
// A Client holds only configuration and may be shared between goroutines;
// every run gets its own validator and coverage tracker.
//
// A Client should be created using NewClient.
type Client struct {
	parser          *parse.Parser
	validatorConfig validate.Config
	parallelRuns    int
	now             func() time.Time
}

// NewClientParams defines the configuration parameters for creating
// a new Client.
//
// Patterns overrides the field extraction patterns, nil uses the defaults.
// SoftAcceptThreshold and IsAuthoritative are passed to the validator.
// ParallelRuns controls how many runs ProcessBatch handles at once.
type NewClientParams struct {
	Patterns            *parse.Patterns
	SoftAcceptThreshold float64
	IsAuthoritative     validate.AuthorityFunc
	NewID               func() string
	ParallelRuns        int
	Now                 func() time.Time
}

// NewClient creates and returns a new Client configured with the provided
// parameters.
//
// Example:
//
//	rules, err := validate.LoadAuthorityRules("authority.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := research.NewClient(research.NewClientParams{
//		IsAuthoritative: rules.Predicate(),
//		ParallelRuns:    4,
//	})
func NewClient(params NewClientParams) (*Client, error) {
	parallelRuns := params.ParallelRuns
	if parallelRuns <= 0 {
		parallelRuns = 1
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	c := &Client{
		parser: parse.New(parse.Config{Patterns: params.Patterns}),
		validatorConfig: validate.Config{
			SoftAcceptThreshold: params.SoftAcceptThreshold,
			IsAuthoritative:     params.IsAuthoritative,
			NewID:               params.NewID,
		},
		parallelRuns: parallelRuns,
		now:          now,
	}
	return c, nil
}

// Parser returns the parser used by the client.
func (c *Client) Parser() *parse.Parser {
	return c.parser
}

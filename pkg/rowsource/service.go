package rowsource

import (
	"context"
	"log"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Service does not execute federated queries: a Service node is a defined
// no-op producing zero rows, with a single logged warning the first time
// it is read. SERVICE SILENT suppresses the warning. The child rowsource
// is kept only so the node still reports the schema the pattern would have
// produced.
type Service struct {
	origin rdfterm.Literal
	silent bool
	child  Rowsource
	logger *log.Logger
	warned bool
}

func NewService(origin rdfterm.Literal, silent bool, child Rowsource, logger *log.Logger) *Service {
	return &Service{origin: origin, silent: silent, child: child, logger: logger}
}

func (s *Service) EnsureVariables() *Schema     { return s.child.EnsureVariables() }
func (s *Service) GetInnerRowsource() Rowsource { return s.child }
func (s *Service) SetOrigin(o *rdfterm.Literal) {}
func (s *Service) Reset() error                 { return nil }

func (s *Service) ReadRow(ctx context.Context) (*Row, error) {
	if !s.warned && !s.silent {
		s.warned = true
		if s.logger != nil {
			s.logger.Printf("SERVICE <%s> is not executed by this engine; producing no rows", s.origin.Lexical)
		}
	}
	return nil, nil
}

func (s *Service) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, s) }

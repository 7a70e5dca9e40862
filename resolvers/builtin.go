package resolvers

import (
	"fmt"

	"github.com/crasofuentes-hub/irrl/resolverreg"
)

// RegisterBuiltins constructs and registers every built-in resolver into
// reg. Called once per ledger from ledger.New, mirroring the
// teacher's explicit MustRegister boot sequence for CAS backends.
func RegisterBuiltins(reg *resolverreg.Registry) error {
	manual, err := NewManualReview()
	if err != nil {
		return fmt.Errorf("resolvers: manualreview: %w", err)
	}
	domain, err := NewDomainOwnership()
	if err != nil {
		return fmt.Errorf("resolvers: domainownership: %w", err)
	}
	url, err := NewURLReachability()
	if err != nil {
		return fmt.Errorf("resolvers: urlreachability: %w", err)
	}
	gh, err := NewGithubRepo()
	if err != nil {
		return fmt.Errorf("resolvers: githubrepo: %w", err)
	}

	for _, r := range []resolverreg.Resolver{manual, domain, url, gh} {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return nil
}

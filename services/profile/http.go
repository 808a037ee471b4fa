package profilesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/access"
)

var mePath = "/api/v1/users/me/"

// Profile is the subset of the Masomo API user profile the gate cares about.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type httpService struct {
	baseURL string
	client  *http.Client
	logger  core.Logger
}

var _ access.ProfileClient = (*httpService)(nil)

// NewHTTPService returns an access.ProfileClient backed by the Masomo API.
// The client carries a hard request timeout so a slow profile service cannot
// stall gate evaluation forever.
func NewHTTPService(conf *core.Config, logger core.Logger) *httpService {
	return &httpService{
		baseURL: strings.TrimRight(conf.Profile.BaseURL, "/"),
		client:  &http.Client{Timeout: conf.Profile.Timeout},
		logger:  logger,
	}
}

// FetchRole asks the profile service who the bearer of credential is.
// A transport failure or non-2xx status maps to access.ErrProfileUnavailable;
// a profile with no role maps to access.ErrNoRole.
func (svc *httpService) FetchRole(ctx context.Context, credential string) (access.Role, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.baseURL+mePath, nil)
	if err != nil {
		return access.RoleUnassigned, errors.Wrap(err, "preparing profile request")
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return access.RoleUnassigned, errors.Wrapf(access.ErrProfileUnavailable, "GET %s: %v", mePath, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return access.RoleUnassigned, errors.Wrapf(access.ErrProfileUnavailable, "GET %s: %s", mePath, res.Status)
	}

	var prof Profile
	if err = json.NewDecoder(res.Body).Decode(&prof); err != nil {
		return access.RoleUnassigned, errors.Wrapf(access.ErrProfileUnavailable, "decoding profile: %v", err)
	}
	if prof.Role == "" {
		return access.RoleUnassigned, access.ErrNoRole
	}
	return access.ParseRole(prof.Role), nil
}

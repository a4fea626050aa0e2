package rivaliq

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Landscape is a named collection of tracked companies.
type Landscape struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Company is a competitor tracked within a landscape.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Landscapes lists the landscapes available to the API key.
func (c *Client) Landscapes(ctx context.Context) ([]Landscape, error) {
	var resp struct {
		Landscapes []Landscape `json:"landscapes"`
	}
	if err := c.getJSON(ctx, "/landscapes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Landscapes, nil
}

// LandscapeIDs lists just the identifiers of the available landscapes.
func (c *Client) LandscapeIDs(ctx context.Context) ([]int64, error) {
	landscapes, err := c.Landscapes(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(landscapes))
	for i, l := range landscapes {
		ids[i] = l.ID
	}
	return ids, nil
}

// Companies lists the companies followed in a landscape.
func (c *Client) Companies(
	ctx context.Context, landscapeID int64,
) ([]Company, error) {
	var resp struct {
		Companies []Company `json:"companies"`
	}
	path := fmt.Sprintf("/landscapes/%d/companies", landscapeID)
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Companies, nil
}

// CompanyIDsByName maps company names to their identifiers within a
// landscape.
func (c *Client) CompanyIDsByName(
	ctx context.Context, landscapeID int64,
) (map[string]int64, error) {
	companies, err := c.Companies(ctx, landscapeID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(companies))
	for _, company := range companies {
		byName[company.Name] = company.ID
	}
	return byName, nil
}

// FollowCompanies follows companies in a landscape by their Rival IQ
// company IDs. The API accepts at most 10 IDs per call.
func (c *Client) FollowCompanies(
	ctx context.Context, landscapeID int64, companyIDs []int64,
) error {
	if len(companyIDs) > 10 {
		return ErrTooManyCompanies
	}

	body := struct {
		CompanyIDs []int64 `json:"companyIds"`
	}{CompanyIDs: companyIDs}

	path := fmt.Sprintf("/landscapes/%d/companies/byId", landscapeID)
	if err := c.postJSON(ctx, path, body, http.StatusOK); err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"landscape": landscapeID,
		"companies": len(companyIDs),
	}).Info("companies followed")
	return nil
}

// UnfollowCompany removes a single company from a landscape.
func (c *Client) UnfollowCompany(
	ctx context.Context, landscapeID, companyID int64,
) error {
	path := fmt.Sprintf("/landscapes/%d/companies/%d", landscapeID, companyID)
	return c.delete(ctx, path, http.StatusNoContent)
}

// UnfollowAllCompanies removes every company from a landscape.
func (c *Client) UnfollowAllCompanies(
	ctx context.Context, landscapeID int64,
) error {
	path := fmt.Sprintf("/landscapes/%d/companies", landscapeID)
	return c.delete(ctx, path, http.StatusNoContent)
}

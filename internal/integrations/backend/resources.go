package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/integrations"
	apperrors "rep-admin/pkg/errors"
)

// resourcePaths - эндпоинт под-ресурса по его виду.
var resourcePaths = map[entities.Kind]string{
	entities.KindPersonal:      "/users/%s/",
	entities.KindAccount:       "/settings/%s/",
	entities.KindSocials:       "/socials/%s/",
	entities.KindCompliance:    "/newsletter/%s/",
	entities.KindServices:      "/service-settings/%s/",
	entities.KindEmailSettings: "/email-settings/%s/",
	entities.KindCallToAction:  "/call-to-action/%s/",
	entities.KindBranding:      "/branding/%s/",
}

const cronJobsEndpoint = "/cron-jobs/"

var distributionEndpoints = map[entities.DistributionType]string{
	entities.DistributionEcard:      "/ecard-distributions/",
	entities.DistributionNewsletter: "/newsletter-distributions/",
}

func resourceEndpoint(kind entities.Kind, repID string) (string, error) {
	pattern, ok := resourcePaths[kind]
	if !ok {
		return "", apperrors.ErrUnknownResource
	}
	return fmt.Sprintf(pattern, url.PathEscape(repID)), nil
}

func distributionEndpoint(dtype entities.DistributionType) (string, error) {
	endpoint, ok := distributionEndpoints[dtype]
	if !ok {
		return "", apperrors.ErrUnknownResource
	}
	return endpoint, nil
}

func (p *Provider) FetchResource(ctx context.Context, kind entities.Kind, repID string) (json.RawMessage, error) {
	endpoint, err := resourceEndpoint(kind, repID)
	if err != nil {
		return nil, err
	}

	raw, err := p.getJSON(ctx, endpoint)
	if err != nil {
		var apiErr *integrations.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" {
		return nil, nil
	}
	return raw, nil
}

func (p *Provider) UpdateResource(ctx context.Context, kind entities.Kind, repID string, payload dto.Payload) (json.RawMessage, error) {
	endpoint, err := resourceEndpoint(kind, repID)
	if err != nil {
		return nil, err
	}
	return p.sendPayload(ctx, http.MethodPut, endpoint, payload)
}

func (p *Provider) ListCronJobs(ctx context.Context) ([]entities.CronJob, error) {
	raw, err := p.getJSON(ctx, cronJobsEndpoint)
	if err != nil {
		return nil, err
	}
	return decodeList[entities.CronJob](p, cronJobsEndpoint, raw)
}

func (p *Provider) CreateCronJob(ctx context.Context, input entities.CronJobInput) (*entities.CronJob, error) {
	raw, err := p.sendJSON(ctx, http.MethodPost, cronJobsEndpoint, input)
	if err != nil {
		return nil, err
	}
	return decodeInto[entities.CronJob](p, cronJobsEndpoint, raw)
}

func (p *Provider) UpdateCronJob(ctx context.Context, id uint64, input entities.CronJobInput) (*entities.CronJob, error) {
	endpoint := fmt.Sprintf("%s%d/", cronJobsEndpoint, id)
	raw, err := p.sendJSON(ctx, http.MethodPut, endpoint, input)
	if err != nil {
		return nil, err
	}
	return decodeInto[entities.CronJob](p, endpoint, raw)
}

func (p *Provider) CronJobAction(ctx context.Context, id uint64, action string) (string, error) {
	raw, err := p.sendJSON(ctx, http.MethodPost, fmt.Sprintf("%s%d/%s/", cronJobsEndpoint, id, action), nil)
	if err != nil {
		return "", err
	}
	return messageOf(raw), nil
}

func (p *Provider) DeleteCronJob(ctx context.Context, id uint64) (string, error) {
	_, raw, err := p.do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", cronJobsEndpoint, id), nil, "")
	if err != nil {
		return "", err
	}
	return messageOf(raw), nil
}

func (p *Provider) ListDistributions(ctx context.Context, dtype entities.DistributionType) ([]entities.Distribution, error) {
	endpoint, err := distributionEndpoint(dtype)
	if err != nil {
		return nil, err
	}
	raw, err := p.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeList[entities.Distribution](p, endpoint, raw)
}

func (p *Provider) DistributionAction(ctx context.Context, dtype entities.DistributionType, id uint64, action string) (string, error) {
	endpoint, err := distributionEndpoint(dtype)
	if err != nil {
		return "", err
	}
	raw, err := p.sendJSON(ctx, http.MethodPost, fmt.Sprintf("%s%d/%s/", endpoint, id, action), nil)
	if err != nil {
		return "", err
	}
	return messageOf(raw), nil
}

func (p *Provider) DeleteDistribution(ctx context.Context, dtype entities.DistributionType, id uint64) (string, error) {
	endpoint, err := distributionEndpoint(dtype)
	if err != nil {
		return "", err
	}
	_, raw, err := p.do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", endpoint, id), nil, "")
	if err != nil {
		return "", err
	}
	return messageOf(raw), nil
}

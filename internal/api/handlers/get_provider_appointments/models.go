package get_provider_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// parseQuery ?from=&to= принимают RFC3339 или YYYY-MM-DD, ?status=, ?includeInactive=true
func parseQuery(providerID int64, q url.Values) (*models.GetProviderAppointmentsRequest, error) {
	req := &models.GetProviderAppointmentsRequest{ProviderID: providerID}

	var err error
	if req.From, err = parseBound(q.Get("from")); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if req.To, err = parseBound(q.Get("to")); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if status := q.Get("status"); status != "" {
		req.Status = &status
	}
	if v := q.Get("includeInactive"); v != "" {
		if req.IncludeInactive, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("includeInactive: %w", err)
		}
	}
	return req, nil
}

func parseBound(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(domain.DateFormat, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package catalogservice

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// ServiceResponse модель услуги из CatalogService
type ServiceResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

func (r *ServiceResponse) toDomain() *domain.Service {
	return &domain.Service{
		ID:              r.ID,
		Name:            r.Name,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
	}
}

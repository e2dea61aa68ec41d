package dto

import "ambulance-dispatch-service/internal/domain"

type AmbulanciaResponse struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Tipo      string `json:"tipo"`
	Estado    string `json:"estado"`
	Matricula string `json:"matricula"`
}

type ListAmbulanciasResponse struct {
	Ambulancias []AmbulanciaResponse `json:"ambulancias"`
}

func NuevaAmbulanciaResponse(a *domain.Ambulancia) AmbulanciaResponse {
	return AmbulanciaResponse{
		ID:        a.ID,
		Nombre:    a.Nombre,
		Tipo:      string(a.Tipo),
		Estado:    string(a.Estado),
		Matricula: a.Matricula,
	}
}

package domain

// TipoAmbulancia distinguishes basic, advanced and conventional units.
type TipoAmbulancia string

const (
	AmbulanciaSVB          TipoAmbulancia = "svb"
	AmbulanciaSVA          TipoAmbulancia = "sva"
	AmbulanciaConvencional TipoAmbulancia = "convencional"
)

// EstadoAmbulancia is the operational status of a vehicle.
type EstadoAmbulancia string

const (
	AmbulanciaDisponible    EstadoAmbulancia = "disponible"
	AmbulanciaEnServicio    EstadoAmbulancia = "enServicio"
	AmbulanciaFueraServicio EstadoAmbulancia = "fueraServicio"
)

// Ambulancia is an external collaborator consulted read-only: the core
// only needs id, name, type and status to validate and display an
// assignment. Vehicle lifecycle is owned elsewhere.
type Ambulancia struct {
	ID        string
	Nombre    string
	Tipo      TipoAmbulancia
	Estado    EstadoAmbulancia
	Matricula string
}

// Asignable reports whether the vehicle can take a lot assignment.
func (a *Ambulancia) Asignable() bool {
	return a.Estado != AmbulanciaFueraServicio
}

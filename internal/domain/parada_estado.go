package domain

import "fmt"

// EstadoParada is the operational status of a stop as a crew executes
// it. The main path is strictly sequential; cancelado and noPresentado
// branch off from any non-terminal state.
type EstadoParada string

const (
	ParadaPendiente        EstadoParada = "pendiente"
	ParadaEnRutaRecogida   EstadoParada = "enRutaRecogida"
	ParadaPacienteRecogido EstadoParada = "pacienteRecogido"
	ParadaEnDestino        EstadoParada = "enDestino"
	ParadaFinalizada       EstadoParada = "finalizado"
	ParadaCancelada        EstadoParada = "cancelado"
	ParadaNoPresentado     EstadoParada = "noPresentado"
)

// siguiente maps each main-path state to its only forward successor.
var siguiente = map[EstadoParada]EstadoParada{
	ParadaPendiente:        ParadaEnRutaRecogida,
	ParadaEnRutaRecogida:   ParadaPacienteRecogido,
	ParadaPacienteRecogido: ParadaEnDestino,
	ParadaEnDestino:        ParadaFinalizada,
}

func (e EstadoParada) EsTerminal() bool {
	return e == ParadaFinalizada || e == ParadaCancelada || e == ParadaNoPresentado
}

// EsValido reports whether e is one of the known stop states.
func (e EstadoParada) EsValido() bool {
	switch e {
	case ParadaPendiente, ParadaEnRutaRecogida, ParadaPacienteRecogido,
		ParadaEnDestino, ParadaFinalizada, ParadaCancelada, ParadaNoPresentado:
		return true
	}
	return false
}

// ValidarTransicion applies the stop state machine rules:
//   - no transition out of a terminal state (ErrEstadoTerminal)
//   - cancelado / noPresentado reachable from any non-terminal state
//   - forward moves must follow the main path one step at a time;
//     out-of-order jumps fail with ErrTransicionInvalida.
func ValidarTransicion(actual, nuevo EstadoParada) error {
	if !nuevo.EsValido() {
		return fmt.Errorf("%w: estado desconocido %q", ErrTransicionInvalida, nuevo)
	}
	if actual.EsTerminal() {
		return fmt.Errorf("%w: parada en %q", ErrEstadoTerminal, actual)
	}
	if nuevo == ParadaCancelada || nuevo == ParadaNoPresentado {
		return nil
	}
	if siguiente[actual] != nuevo {
		return fmt.Errorf("%w: %q -> %q", ErrTransicionInvalida, actual, nuevo)
	}
	return nil
}

// EstadoSolicitudParaParada is the explicit mapping between the stop
// state machine and the request lifecycle (they stay separate enums and
// only meet here).
func EstadoSolicitudParaParada(e EstadoParada) EstadoSolicitud {
	switch e {
	case ParadaEnRutaRecogida:
		return SolicitudDespachada
	case ParadaPacienteRecogido:
		return SolicitudTransportando
	case ParadaEnDestino:
		return SolicitudEnDestino
	case ParadaFinalizada:
		return SolicitudCompletada
	case ParadaCancelada, ParadaNoPresentado:
		return SolicitudCancelada
	default:
		return SolicitudPlanificada
	}
}

// ABOUTME: Maps service errors to the messages shown to end users.
// ABOUTME: Access denials share one message regardless of cause.
package tracker

import (
	"errors"
	"strings"

	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/harperreed/vitals/internal/uploads"
	"github.com/harperreed/vitals/internal/validation"
)

// UserMessage renders err for display. Validation errors are joined one
// per line.
func UserMessage(err error) string {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return strings.Join(verrs.Messages(), "\n")
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message
	}

	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrForbidden):
		return auth.DeniedMessage
	case errors.Is(err, auth.ErrInvalidToken):
		return "La sesión expiró, inicia sesión de nuevo"
	case errors.Is(err, auth.ErrBadCredentials):
		return "Usuario o contraseña incorrectos"
	case errors.Is(err, storage.ErrDuplicateName):
		return "Ese usuario ya existe"
	case errors.Is(err, storage.ErrDuplicateEmail):
		return "Ese correo electrónico ya está registrado"
	case errors.Is(err, storage.ErrNotFound):
		return "Registro no encontrado"
	case errors.Is(err, storage.ErrAmbiguousID):
		return "El identificador coincide con varios registros"
	case errors.Is(err, ErrNoData):
		return "No hay datos suficientes para mostrar estadísticas."
	case errors.Is(err, ErrInsufficientData):
		return "Necesitas registrar tu Peso y tu Altura para calcular el IMC."
	case errors.Is(err, ErrInvalidHeight):
		return "Error: El valor de la altura no es válido."
	case errors.Is(err, uploads.ErrInvalidImage):
		return "Tipo de imagen no permitido (png, jpg, jpeg, gif)"
	case errors.Is(err, ErrPersistence):
		return "No se pudieron guardar los cambios"
	}
	return err.Error()
}

// Informational reports whether err describes a missing-data state rather
// than a failure.
func Informational(err error) bool {
	return errors.Is(err, ErrNoData) || errors.Is(err, ErrInsufficientData)
}

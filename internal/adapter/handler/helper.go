package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/g37/meeting-manager/errors"
	"github.com/g37/meeting-manager/internal/adapter/dto/common"
	"github.com/g37/meeting-manager/internal/infrastructure/http/middleware"
	usecaseErrors "github.com/g37/meeting-manager/internal/usecase/errors"
)

// respondError maps any error onto the API error shape. AppErrors carry their
// own HTTP code; usecase sentinels get translated; anything else is a 500
// with the cause logged, not leaked.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var appErr apperrors.AppError
	if stdErrors.As(err, &appErr) {
		return c.JSON(appErr.HTTPCode, common.ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code.String(),
			Details: appErr.Details,
		})
	}

	switch {
	case stdErrors.Is(err, usecaseErrors.ErrActionNotFound),
		stdErrors.Is(err, usecaseErrors.ErrMeetingNotFound),
		stdErrors.Is(err, usecaseErrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, common.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.ErrorCode_NOT_FOUND.String(),
		})
	case stdErrors.Is(err, usecaseErrors.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, common.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.ErrorCode_STATE_TRANSITION.String(),
		})
	case stdErrors.Is(err, usecaseErrors.ErrDuplicateExecution):
		return c.JSON(http.StatusConflict, common.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.ErrorCode_DUPLICATE_EXECUTION.String(),
		})
	case stdErrors.Is(err, usecaseErrors.ErrRejectReasonRequired),
		stdErrors.Is(err, usecaseErrors.ErrInvalidInput),
		stdErrors.Is(err, usecaseErrors.ErrNoActionItems):
		return c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.ErrorCode_VALIDATION.String(),
		})
	case stdErrors.Is(err, usecaseErrors.ErrAllSourcesFailed):
		return c.JSON(http.StatusBadGateway, common.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.ErrorCode_SOURCE_CONNECTIVITY.String(),
		})
	case stdErrors.Is(err, usecaseErrors.ErrAutomationUnavailable):
		return c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.ErrorCode_EXTERNAL_UNAVAILABLE.String(),
		})
	case stdErrors.Is(err, usecaseErrors.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, common.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.ErrorCode_UNAUTHENTICATED.String(),
		})
	}

	logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Error: "internal server error",
		Code:  apperrors.ErrorCode_INTERNAL.String(),
	})
}

// bindAndValidate binds the request body or query onto v and runs the
// validator registered on echo.
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperrors.ErrInvalidArgument("malformed request body")
	}
	if err := c.Validate(v); err != nil {
		return apperrors.ErrValidation(err.Error())
	}
	return nil
}

// actionID parses the :id path parameter.
func actionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidArgument("invalid pending action id")
	}
	return id, nil
}

// callerID returns the authenticated user's id set by the auth middleware.
func callerID(c echo.Context) (int64, error) {
	id, ok := c.Get(middleware.ContextUserID).(int64)
	if !ok {
		return 0, apperrors.ErrUnauthenticated()
	}
	return id, nil
}

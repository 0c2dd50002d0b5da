package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/ammasidli/storefront/internal/errors"
	inHttp "github.com/ammasidli/storefront/internal/http"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/user/internal/otel"
	"github.com/ammasidli/storefront/user/internal/service"
	"github.com/ammasidli/storefront/user/pkg/request"
)

type UserController struct {
	service *service.UserService
}

func AttachUserController(router *mux.Router, svc *service.UserService) {
	controller := UserController{service: svc}

	sub := router.PathPrefix("/users").Subrouter()
	sub.HandleFunc("/otp", controller.RequestOtp).Methods(http.MethodPost)
	sub.HandleFunc("/otp/verify", controller.VerifyOtp).Methods(http.MethodPost)
}

func writeFailed(c context.Context, w http.ResponseWriter, statusCode int, err error) {
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": statusCode,
		"message":    err.Error(),
	})
}

func (t UserController) RequestOtp(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController RequestOtp")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController RequestOtp").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.RequestOtp{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, http.StatusBadRequest, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, http.StatusBadRequest, err)
		return
	}

	c = logger.WithContext(c)
	if err := t.service.RequestOtp(c, reqBody.PhoneNumber); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, http.StatusInternalServerError, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "one-time code sent",
	})
}

func (t UserController) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController VerifyOtp")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController VerifyOtp").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.VerifyOtp{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, http.StatusBadRequest, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, http.StatusBadRequest, err)
		return
	}

	c = logger.WithContext(c)
	token, user, err := t.service.VerifyOtp(c, reqBody.PhoneNumber, reqBody.Code)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrOtpNotFound) || errors.Is(err, inErrors.ErrOtpMismatch) {
			statusCode = http.StatusUnauthorized
		}
		writeFailed(c, w, statusCode, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "signed in",
		"data":       map[string]interface{}{"token": token, "user": user},
	})
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gerfey/planit/internal/models"
)

var registerOnce sync.Once

// RegisterValidators добавляет в валидатор gin правила taskstatus и taskdate.
func RegisterValidators() error {
	var err error

	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("валидатор gin не является validator.Validate")

			return
		}

		if err = v.RegisterValidation("taskstatus", validateTaskStatus); err != nil {
			return
		}

		err = v.RegisterValidation("taskdate", validateTaskDate)
	})

	return err
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return models.TaskStatus(fl.Field().String()).Valid()
}

func validateTaskDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDueDate(fl.Field().String())

	return err == nil
}

// fieldMessages сопоставляет "Поле.тег" с текстом ошибки для клиента.
var fieldMessages = map[string]string{
	"Username.required": msgCredentialsRequired,
	"Password.required": msgCredentialsRequired,
	"Title.required":    msgTaskFieldsRequired,
	"DueDate.required":  msgTaskFieldsRequired,
	"Title.min":         msgTitleLength,
	"Title.max":         msgTitleLength,
	"DueDate.taskdate":  msgInvalidDueDate,
	"Status.taskstatus": msgInvalidStatus,
}

// bindingError превращает ошибку ShouldBind* в 400 с первым сообщением и списком всех нарушений.
// Пустое тело считается запросом без полей и получает emptyMessage.
func bindingError(err error, emptyMessage string) *Error {
	if errors.Is(err, io.EOF) {
		return NewError(http.StatusBadRequest, emptyMessage)
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return NewError(http.StatusBadRequest, msgInvalidBody, typeErr.Field+": unexpected "+typeErr.Value)
		}

		return NewError(http.StatusBadRequest, msgInvalidBody)
	}

	details := make([]string, 0, len(validationErrs))
	seen := make(map[string]struct{}, len(validationErrs))
	for _, fe := range validationErrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		details = append(details, msg)
	}

	if len(details) == 1 {
		return NewError(http.StatusBadRequest, details[0])
	}

	return NewError(http.StatusBadRequest, details[0], details...)
}

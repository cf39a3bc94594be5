package http_utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

func SendResponse(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)

	if err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)
	w.Write(data)
}

func SendError(w http.ResponseWriter, code int, msg string) {
	SendResponse(w, code, NewBaseResponse(false, msg))
}

// ValidateStruct returns a zero ValidationErrorResponse when s passes
// validation, or one carrying the field errors when it does not.
func ValidateStruct(v *validator.Validate, s interface{}) ValidationErrorResponse {
	if err := v.Struct(s); err != nil {
		return ValidationErrorResponse{
			BaseResponse: BaseResponse{
				Success: false,
				Message: "invalid body, validation failed",
			},
			Errors: lo.Map(err.(validator.ValidationErrors), func(item validator.FieldError, index int) string {
				return item.Error()
			}),
		}
	}

	return ValidationErrorResponse{}
}

package summarizer

import "google.golang.org/genai"

func genaiErr(code int) error {
	return genai.APIError{Code: code, Status: "RESOURCE_EXHAUSTED", Message: "quota"}
}

package backend

import "encoding/json"

// loginResponse - бэкенды отдают токен под разными именами.
type loginResponse struct {
	Token  string          `json:"token"`
	Access string          `json:"access"`
	Key    string          `json:"key"`
	User   json.RawMessage `json:"user"`
}

func (r loginResponse) token() string {
	switch {
	case r.Token != "":
		return r.Token
	case r.Access != "":
		return r.Access
	}
	return r.Key
}

package handlers

import (
	"net/http"

	"github.com/hustlehub/authgate/auth"
	"github.com/hustlehub/authgate/utils"
)

// NotFound answers every unmatched route, including known paths hit with
// the wrong method
func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteNotFound(w, auth.MsgEndpointNotFound)
}

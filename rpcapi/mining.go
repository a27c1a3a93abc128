// Copyright 2024 The cauchy Authors
// This file is part of the cauchy library.
//
// The cauchy library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cauchy library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cauchy library. If not, see <http://www.gnu.org/licenses/>.

package rpcapi

import (
	"net/http"

	"github.com/cauchy-team/cauchy/cauchycrypto"
	"github.com/julienschmidt/httprouter"
)

type miningInfoResponse struct {
	NWorkers   int    `json:"n_workers"`
	Site       []byte `json:"site,omitempty"`
	BestNonce  uint64 `json:"best_nonce"`
	BestDigest []byte `json:"best_digest,omitempty"`
}

func (s *Server) registerMiningRoutes() {
	s.router.GET("/v1/mining/info", s.handleMiningInfo)
}

func (s *Server) handleMiningInfo(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	coordinator := s.player.Coordinator
	resp := miningInfoResponse{NWorkers: coordinator.NWorkers()}
	if session := coordinator.CurrentSession(); session != nil {
		site := session.Site()
		resp.Site = site[:]
		resp.BestNonce = session.BestNonce()
		digest := cauchycrypto.MiningDigest(site, resp.BestNonce)
		resp.BestDigest = digest[:]
	}
	writeJSON(w, http.StatusOK, resp)
}

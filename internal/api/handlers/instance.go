package handlers

import (
	"log"
	"net/http"

	"coverage-planner-service/internal/api/dto"
	"coverage-planner-service/internal/ports"
)

// InstanceHandler exposes read-only views of the stored instance.
type InstanceHandler struct {
	Repo ports.InstanceRepository
}

func (h *InstanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	inst, err := h.Repo.LoadInstance(r.Context())
	if err != nil {
		log.Printf("load instance failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.InstanceResponse{
		Budget:          inst.Budget(),
		TotalPopulation: inst.TotalPopulation(),
		Regions:         make([]dto.RegionResponse, 0, inst.NumRegions()),
		Sites:           make([]dto.SiteResponse, 0, inst.NumSites()),
	}
	for i := 0; i < inst.NumRegions(); i++ {
		reg := inst.Region(i)
		res.Regions = append(res.Regions, dto.RegionResponse{
			RegionID:   reg.ID,
			Population: reg.Population,
		})
	}
	for i := 0; i < inst.NumSites(); i++ {
		site := inst.Site(i)
		res.Sites = append(res.Sites, dto.SiteResponse{
			SiteID: site.ID,
			Cost:   site.Cost,
			Covers: site.Covers,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

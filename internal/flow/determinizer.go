package flow

import "github.com/rmoraes/leadflow/internal/domain"

// Determine computes the canonical stage purely from data completeness. It is
// recomputed from scratch every turn and never trusts the persisted stage for
// primary stages, which makes it self-healing against stale or corrupted
// values. Absorbing side-states and the terminal stage short-circuit the walk;
// only the transition policy can move a session out of them.
func Determine(ctx *domain.ConversationContext) domain.Stage {
	if ctx.Stage.IsSideState() || ctx.Stage == domain.StageConcluido {
		return ctx.Stage
	}
	return walkPrimary(ctx)
}

// walkPrimary runs the ordered predicate walk: the first primary stage with a
// non-empty missing list wins. A process status of "abandonado" overrides the
// walk entirely.
func walkPrimary(ctx *domain.ConversationContext) domain.Stage {
	if ctx.ProcessStatus.GetString("status") == "abandonado" {
		return domain.StageAbandonado
	}

	for _, stage := range domain.PrimaryStages {
		if stage == domain.StageConcluido {
			// Reached only when the processing stage reports completion;
			// otherwise the session stays in processamento.
			if ctx.ProcessStatus.IsTrue("finalizado") {
				return domain.StageConcluido
			}
			continue
		}
		if len(MissingFields(stage, ctx)) > 0 {
			return stage
		}
	}

	if ctx.ProcessStatus.IsTrue("finalizado") {
		return domain.StageConcluido
	}
	return domain.StageProcessamento
}

// Progress reports how far along the primary journey the context is, as a
// percentage of the canonical stage index over the full sequence. Sessions in
// a side-state report the progress of their underlying data.
func Progress(ctx *domain.ConversationContext) int {
	idx := walkPrimary(ctx).Index()
	if idx < 0 {
		idx = 0
	}
	last := len(domain.PrimaryStages) - 1
	return idx * 100 / last
}

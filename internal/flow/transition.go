package flow

import (
	"strings"

	"github.com/rmoraes/leadflow/internal/domain"
)

// pauseKeywords are side-effect phrases scanned in the raw user input. Any hit
// forces the session into pausado unless it is already past the point of no
// return (processamento/concluido).
var pauseKeywords = []string{
	"stop",
	"pausar",
	"pausa",
	"depois",
	"mais tarde",
	"não agora",
	"nao agora",
	"volto",
	"encerrar",
	"finalizar",
}

// DetectPauseIntent reports whether the user's raw input carries a pause or
// walk-away signal.
func DetectPauseIntent(userText string) bool {
	text := strings.ToLower(userText)
	for _, kw := range pauseKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Transition combines the canonical stage, the model-suggested stage and the
// pause detector into the next stage. Rules, in priority order:
//
//  1. A pause signal in the user input forces pausado, unless the session is
//     already in processamento or concluido.
//  2. A suggested side-state (pausado/abandonado) is accepted unconditionally.
//  3. A suggested primary stage is accepted only when its position is at or
//     ahead of the canonical stage, so a confused model can never regress the
//     conversation.
//  4. Otherwise the canonical stage stands, so a model that fails to advance
//     cannot stall a session whose required data is already present.
//
// suggested may be empty when the model offered no stage.
func Transition(canonical domain.Stage, suggested domain.Stage, userText string) domain.Stage {
	if DetectPauseIntent(userText) &&
		canonical != domain.StageProcessamento && canonical != domain.StageConcluido {
		return domain.StagePausado
	}

	if suggested.IsSideState() {
		return suggested
	}

	if suggested != "" && suggested.IsValid() && suggested.Index() >= canonical.Index() {
		return suggested
	}

	return canonical
}

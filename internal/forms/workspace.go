package forms

import (
	"time"

	"rep-admin/internal/entities"
)

// Workspace - состояние страницы профиля одного представителя в рамках сессии оператора:
// редакторы карточек и общий режим "Edit Profile".
type Workspace struct {
	SessionID string                   `json:"session_id"`
	RepID     string                   `json:"rep_id"`
	Cards     map[entities.Kind]*State `json:"cards"`
	// Profile не nil, пока включён общий режим редактирования.
	Profile   *State    `json:"profile,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWorkspace(sessionID, repID string) *Workspace {
	return &Workspace{
		SessionID: sessionID,
		RepID:     repID,
		Cards:     make(map[entities.Kind]*State),
	}
}

// Card возвращает состояние карточки, создавая пустое при первом обращении.
func (w *Workspace) Card(kind entities.Kind) *State {
	if w.Cards == nil {
		w.Cards = make(map[entities.Kind]*State)
	}
	st, ok := w.Cards[kind]
	if !ok {
		st = &State{Kind: kind}
		w.Cards[kind] = st
	}
	return st
}

func (w *Workspace) ProfileMode() bool {
	return w.Profile != nil
}

// CancelCards выходит из редактирования во всех карточках.
func (w *Workspace) CancelCards() []FileRef {
	var released []FileRef
	for kind, st := range w.Cards {
		def, ok := Lookup(kind)
		if !ok || !st.Editing {
			continue
		}
		released = append(released, NewEditor(def, st, nil).Cancel()...)
	}
	return released
}

// CancelAll сбрасывает и карточки, и общий режим.
func (w *Workspace) CancelAll() []FileRef {
	released := w.CancelCards()
	if w.Profile != nil {
		def, _ := Lookup(entities.KindPersonal)
		released = append(released, NewEditor(def, w.Profile, nil).Cancel()...)
		w.Profile = nil
	}
	return released
}

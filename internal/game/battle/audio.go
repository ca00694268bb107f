package battle

// Cue identifies a sound or music track.
type Cue string

const (
	CueBattleMusic    Cue = "battle_music"
	CueHit            Cue = "hit"
	CueEnemyAttack    Cue = "enemy_attack"
	CueOverworldMusic Cue = "overworld_music"
	CueWinMusic       Cue = "win_music"
	CueGameOver       Cue = "game_over"
)

// AudioCues is the fire-and-forget audio dispatcher.
type AudioCues interface {
	Play(cue Cue)
}

type nopAudio struct{}

func (nopAudio) Play(Cue) {}

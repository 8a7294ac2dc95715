package player

import "github.com/voxdj/voxdj/internal/domain/song"

// CommandType identifies an inbound command or playback surface event.
type CommandType string

// Commands produced by the intent-dispatch collaborator.
const (
	CmdPlay               CommandType = "play"
	CmdPlayPlaylist       CommandType = "play_playlist"
	CmdResume             CommandType = "resume"
	CmdPause              CommandType = "pause"
	CmdNext               CommandType = "next"
	CmdPrevious           CommandType = "previous"
	CmdSetLoop            CommandType = "set_loop"
	CmdSetShuffle         CommandType = "set_shuffle"
	CmdStartOver          CommandType = "start_over"
	CmdSavePlaylist       CommandType = "save_playlist"
	CmdDeletePlaylist     CommandType = "delete_playlist"
	CmdStartSavedPlaylist CommandType = "start_saved_playlist"
	CmdListSavedPlaylists CommandType = "list_saved_playlists"
	CmdNowPlaying         CommandType = "now_playing"
	CmdSetResolver        CommandType = "set_resolver"
)

// Events echoed back by the host playback surface.
const (
	EvtPlaybackStarted        CommandType = "playback_started"
	EvtPlaybackStopped        CommandType = "playback_stopped"
	EvtPlaybackFinished       CommandType = "playback_finished"
	EvtPlaybackFailed         CommandType = "playback_failed"
	EvtPlaybackNearlyFinished CommandType = "playback_nearly_finished"
)

// Command is one inbound unit of work. Only the fields relevant to the
// command type are set.
type Command struct {
	Type      CommandType
	Query     string            // play
	Filter    song.SearchFilter // play
	EncodedID string            // play_playlist, save_playlist, set_resolver
	Name      string            // delete_playlist, start_saved_playlist
	Enabled   bool              // set_loop, set_shuffle
	TrackID   string            // playback_started
	OffsetMS  int64             // playback_stopped
}

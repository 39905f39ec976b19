package main

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// Client -> Server message types
const (
	MsgJoin   = "join"
	MsgLeave  = "leave"
	MsgInput  = "input"
	MsgCreate = "create" // create session
	MsgList   = "list"   // list sessions
	MsgCheck  = "check"  // check if session exists

	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // token re-auth
	MsgProfile  = "profile"
)

// Server -> Client message types
const (
	MsgState    = "state"
	MsgWelcome  = "welcome"
	MsgLevel    = "level"
	MsgSessions = "sessions"
	MsgJoined   = "joined"
	MsgCreated  = "created" // session created, client should navigate
	MsgError    = "error"
	MsgChecked  = "checked" // session check response

	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgUnlocked    = "unlocked" // achievement notification
)

// Envelope wraps all outgoing JSON messages with a type field.
// State snapshots travel separately as msgpack binary frames.
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// Input frame flag bits, one per edge/hold control
const (
	flagLeft  = 1 << 0
	flagRight = 1 << 1
	flagDown  = 1 << 2
	flagJump  = 1 << 3
	flagFire  = 1 << 4
	flagToss  = 1 << 5
	flagDash  = 1 << 6
)

const inputFrameLen = 5 // flags byte + int16 aimX + int16 aimY

var errBadInputFrame = errors.New("malformed input frame")

// DecodeInputFrame unpacks the compact binary control record clients
// send every tick: one flags byte followed by the aim point as two
// little-endian int16 world coordinates.
func DecodeInputFrame(data []byte) (Input, error) {
	if len(data) != inputFrameLen {
		return Input{}, errBadInputFrame
	}
	f := data[0]
	return Input{
		Left:  f&flagLeft != 0,
		Right: f&flagRight != 0,
		Down:  f&flagDown != 0,
		Jump:  f&flagJump != 0,
		Fire:  f&flagFire != 0,
		Toss:  f&flagToss != 0,
		Dash:  f&flagDash != 0,
		AimX:  float64(int16(binary.LittleEndian.Uint16(data[1:3]))),
		AimY:  float64(int16(binary.LittleEndian.Uint16(data[3:5]))),
	}, nil
}

// EncodeInputFrame is the inverse of DecodeInputFrame
func EncodeInputFrame(in Input) []byte {
	var f byte
	if in.Left {
		f |= flagLeft
	}
	if in.Right {
		f |= flagRight
	}
	if in.Down {
		f |= flagDown
	}
	if in.Jump {
		f |= flagJump
	}
	if in.Fire {
		f |= flagFire
	}
	if in.Toss {
		f |= flagToss
	}
	if in.Dash {
		f |= flagDash
	}
	buf := make([]byte, inputFrameLen)
	buf[0] = f
	binary.LittleEndian.PutUint16(buf[1:3], uint16(int16(in.AimX)))
	binary.LittleEndian.PutUint16(buf[3:5], uint16(int16(in.AimY)))
	return buf
}

// InputMsg is the JSON fallback for clients that cannot emit binary
// frames; the compact frame is preferred
type InputMsg struct {
	Left  bool    `json:"l,omitempty"`
	Right bool    `json:"r,omitempty"`
	Down  bool    `json:"d,omitempty"`
	Jump  bool    `json:"j,omitempty"`
	Fire  bool    `json:"f,omitempty"`
	Toss  bool    `json:"t,omitempty"`
	Dash  bool    `json:"da,omitempty"`
	AimX  float64 `json:"ax"`
	AimY  float64 `json:"ay"`
}

// ToInput converts the wire record into a kernel control record
func (m InputMsg) ToInput() Input {
	return Input{
		Left: m.Left, Right: m.Right, Down: m.Down,
		Jump: m.Jump, Fire: m.Fire, Toss: m.Toss, Dash: m.Dash,
		AimX: m.AimX, AimY: m.AimY,
	}
}

// RegisterMsg creates a new account
type RegisterMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// LoginMsg authenticates an existing account
type LoginMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// AuthMsg re-authenticates with a stored token
type AuthMsg struct {
	Token string `json:"tok"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"tok"`
	Username string `json:"u"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg carries career stats to the client
type ProfileDataMsg struct {
	Username     string   `json:"u"`
	Level        int      `json:"lvl"`
	XP           int      `json:"xp"`
	KOs          int      `json:"kos"`
	Deaths       int      `json:"deaths"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	Matches      int      `json:"matches"`
	Achievements []string `json:"ach,omitempty"`
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
	Token     string `json:"tok,omitempty"` // optional auth token
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
	Token       string `json:"tok,omitempty"`
}

// PlayerState is broadcast per agent
type PlayerState struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"n" msgpack:"n"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	VX     float64 `json:"vx" msgpack:"vx"`
	VY     float64 `json:"vy" msgpack:"vy"`
	HP     int     `json:"hp" msgpack:"hp"`
	MaxHP  int     `json:"mhp" msgpack:"mhp"`
	Face   int     `json:"f" msgpack:"f"`
	KOs    int     `json:"k" msgpack:"k"`
	Alive  bool    `json:"a" msgpack:"a"`
	Ground bool    `json:"g" msgpack:"g"`
	Weapon string  `json:"w,omitempty" msgpack:"w,omitempty"`
	Ammo   int     `json:"am,omitempty" msgpack:"am,omitempty"`
}

// GunPickupState is broadcast per ground or thrown weapon
type GunPickupState struct {
	ID     string  `json:"id" msgpack:"id"`
	Weapon string  `json:"w" msgpack:"w"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Ammo   int     `json:"am" msgpack:"am"`
}

// BulletState is broadcast per live projectile
type BulletState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	VX float64 `json:"vx" msgpack:"vx"`
	VY float64 `json:"vy" msgpack:"vy"`
	R  float64 `json:"r" msgpack:"r"`
}

// BeamState is broadcast per live beam, Age lets the client derive
// the warmup/active/fade phase locally
type BeamState struct {
	ID    string  `json:"id" msgpack:"id"`
	SX    float64 `json:"sx" msgpack:"sx"`
	SY    float64 `json:"sy" msgpack:"sy"`
	EX    float64 `json:"ex" msgpack:"ex"`
	EY    float64 `json:"ey" msgpack:"ey"`
	Age   float64 `json:"age" msgpack:"age"`
	Color string  `json:"c" msgpack:"c"`
}

// GameState is the full state broadcast
type GameState struct {
	Players  []PlayerState    `json:"p" msgpack:"p"`
	Guns     []GunPickupState `json:"gn" msgpack:"gn"`
	Bullets  []BulletState    `json:"b" msgpack:"b"`
	Beams    []BeamState      `json:"bm" msgpack:"bm"`
	Tick     uint64           `json:"tick" msgpack:"tick"`
	TimeLeft float64          `json:"tl" msgpack:"tl"`
	CamX     float64          `json:"cx" msgpack:"cx"`
	CamY     float64          `json:"cy" msgpack:"cy"`
}

// EncodeSnapshot packs a state snapshot for the binary broadcast path
func EncodeSnapshot(st GameState) ([]byte, error) {
	return msgpack.Marshal(st)
}

// DecodeSnapshot is the client-side inverse of EncodeSnapshot
func DecodeSnapshot(data []byte) (GameState, error) {
	var st GameState
	err := msgpack.Unmarshal(data, &st)
	return st, err
}

// PlatformState describes one collision rectangle for the client
type PlatformState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Thin bool    `json:"thin,omitempty"`
}

// ZoneState describes a wind zone
type ZoneState struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Strength float64 `json:"s"`
}

// TeleporterState describes one teleporter pair
type TeleporterState struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	ExitX float64 `json:"ex"`
	ExitY float64 `json:"ey"`
}

// LevelState is sent once on join; the arena never changes shape
// mid-match apart from breakables, which ride the state broadcast.
type LevelState struct {
	Width       float64           `json:"w"`
	Height      float64           `json:"h"`
	Platforms   []PlatformState   `json:"pl"`
	Wind        []ZoneState       `json:"wz"`
	Teleporters []TeleporterState `json:"tp"`
}

// BuildLevelState flattens the arena geometry for the join payload
func BuildLevelState(level *Level) LevelState {
	ls := LevelState{Width: WorldWidth, Height: WorldHeight}
	for _, p := range level.Static {
		ls.Platforms = append(ls.Platforms, PlatformState{
			X: p.Rect.X, Y: p.Rect.Y, W: p.Rect.W, H: p.Rect.H,
			Thin: p.Kind == TileThin,
		})
	}
	for _, wz := range level.Wind {
		ls.Wind = append(ls.Wind, ZoneState{
			X: wz.Rect.X, Y: wz.Rect.Y, W: wz.Rect.W, H: wz.Rect.H,
			Strength: wz.Strength,
		})
	}
	for _, tp := range level.Teleporters {
		ls.Teleporters = append(ls.Teleporters, TeleporterState{
			X: tp.Entry.X, Y: tp.Entry.Y, W: tp.Entry.W, H: tp.Entry.H,
			ExitX: tp.ExitX, ExitY: tp.ExitY,
		})
	}
	return ls
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID    string     `json:"id"`
	Level LevelState `json:"level"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by a client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

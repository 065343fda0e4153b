package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/qnkhuat/chesswidget/pkg/cipher"
	"github.com/qnkhuat/chesswidget/pkg/oracle"
)

// Persist encrypts the serialized session and writes it to the save path.
// Failures are logged and returned in the Result.
func (s *Store) Persist() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.serializeLocked()
	if err := s.write(sess); err != nil {
		s.logger.Error("failed to save game", zap.String("path", s.path), zap.Error(err))
		return failure(err)
	}
	s.lastSave = sess.LastSaveTime
	s.logger.Debug("saved game", zap.String("game_id", sess.GameID), zap.Int("moves", len(sess.MoveHistory)))
	return success()
}

func (s *Store) write(sess GameSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	env, err := s.sealer.Encrypt(payload)
	if err != nil {
		return fmt.Errorf("encrypt session: %w", err)
	}
	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// Restore loads the save file and replaces the session with it. Any
// failure leaves the current session untouched.
func (s *Store) Restore() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.read()
	if err != nil {
		if errors.Is(err, ErrNoSave) {
			s.logger.Info("no saved game", zap.String("path", s.path))
		} else {
			s.logger.Warn("failed to load game", zap.String("path", s.path), zap.Error(err))
		}
		return failure(err)
	}

	s.pos = loaded.pos
	s.history = loaded.sess.MoveHistory
	s.lastMove = loaded.lastMove
	s.gameID = loaded.sess.GameID
	s.white = loaded.sess.WhitePlayer
	s.black = loaded.sess.BlackPlayer
	s.startTime = loaded.sess.GameStartTime
	s.lastSave = loaded.sess.LastSaveTime
	s.started = true
	s.logger.Info("loaded game", zap.String("game_id", s.gameID), zap.Int("moves", len(s.history)))
	return success()
}

type loadedSession struct {
	sess     GameSession
	pos      oracle.Position
	lastMove *oracle.Move
}

func (s *Store) read() (loadedSession, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return loadedSession{}, ErrNoSave
		}
		return loadedSession{}, fmt.Errorf("read save file: %w", err)
	}
	env, err := cipher.DecodeEnvelope(data)
	if err != nil {
		return loadedSession{}, err
	}
	plaintext, err := s.sealer.Decrypt(env)
	if err != nil {
		return loadedSession{}, err
	}

	var sess GameSession
	if err := json.Unmarshal(plaintext, &sess); err != nil {
		return loadedSession{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	pos, err := s.oracle.FromFEN(sess.FEN)
	if err != nil {
		return loadedSession{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	for i, rec := range sess.MoveHistory {
		if _, err := oracle.ParseColor(rec.Turn); err != nil {
			return loadedSession{}, fmt.Errorf("%w: move %d: %v", ErrFormat, i+1, err)
		}
	}

	out := loadedSession{sess: sess, pos: pos}
	if n := len(sess.MoveHistory); n > 0 {
		m, err := oracle.ParseMove(sess.MoveHistory[n-1].UCI)
		if err != nil {
			return loadedSession{}, fmt.Errorf("%w: last move: %v", ErrFormat, err)
		}
		out.lastMove = &m
	}
	if out.sess.MoveHistory == nil {
		out.sess.MoveHistory = []MoveRecord{}
	}
	if out.sess.WhitePlayer == "" {
		out.sess.WhitePlayer = DefaultWhitePlayer
	}
	if out.sess.BlackPlayer == "" {
		out.sess.BlackPlayer = DefaultBlackPlayer
	}
	if out.sess.GameStartTime == "" {
		out.sess.GameStartTime = formatTime(s.now())
	}
	return out, nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace save file: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"time"

	ini "gopkg.in/ini.v1"
)

// Settings holds application configuration loaded from settings.ini.
type Settings struct {
	relayAddress string
	userID       string
	displayName  string

	ringTimeout  int
	noticeWindow int

	dataFolder string
}

// LoadSettings reads configuration from ini file and validates required fields.
func LoadSettings(cfg *ini.File) (*Settings, error) {
	s := &Settings{}

	sec := cfg.Section("relay")
	s.relayAddress = sec.Key("address").MustString("127.0.0.1:7400")
	s.userID = sec.Key("user_id").String()
	s.displayName = sec.Key("display_name").String()

	sec = cfg.Section("call")
	s.ringTimeout = sec.Key("ring_timeout").MustInt(30)
	s.noticeWindow = sec.Key("notice_window").MustInt(2)

	sec = cfg.Section("storage")
	s.dataFolder = sec.Key("data_folder").MustString(".")

	if s.userID == "" {
		return nil, fmt.Errorf("relay user_id must be set")
	}
	if s.displayName == "" {
		s.displayName = s.userID
	}

	return s, nil
}

func (s *Settings) RelayAddress() string { return s.relayAddress }
func (s *Settings) UserID() string       { return s.userID }
func (s *Settings) DisplayName() string  { return s.displayName }
func (s *Settings) DataFolder() string   { return s.dataFolder }

func (s *Settings) RingTimeout() time.Duration {
	return time.Duration(s.ringTimeout) * time.Second
}

func (s *Settings) NoticeWindow() time.Duration {
	return time.Duration(s.noticeWindow) * time.Second
}

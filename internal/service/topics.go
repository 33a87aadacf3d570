package service

import (
	"context"
	"regexp"
	"strings"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/robotcmd"
)

var topicLineRe = regexp.MustCompile(`^(/[^\s]+)\s+\[([^\]]+)\]$`)

// ParseTopicList parses `ros2 topic list -t` output. Lines without a
// bracketed type keep their first field with an unknown type.
func ParseTopicList(out string) []models.Topic {
	var topics []models.Topic
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := topicLineRe.FindStringSubmatch(line); m != nil {
			topics = append(topics, models.Topic{Name: m[1], Type: strings.TrimSpace(m[2])})
			continue
		}
		topics = append(topics, models.Topic{Name: strings.Fields(line)[0], Type: models.UnknownTopicType})
	}
	return topics
}

type TopicService struct {
	runner  CommandRunner
	catalog robotcmd.Catalog
	allow   robotcmd.AllowList
}

func NewTopicService(runner CommandRunner, catalog robotcmd.Catalog, allow robotcmd.AllowList) *TopicService {
	return &TopicService{runner: runner, catalog: catalog, allow: allow}
}

func (s *TopicService) ListTopics(ctx context.Context) ([]models.Topic, error) {
	out, err := s.run(ctx, s.catalog.TopicList())
	if err != nil {
		return nil, err
	}
	return ParseTopicList(out), nil
}

func (s *TopicService) TopicInfo(ctx context.Context, name string) (string, error) {
	cmd, err := s.catalog.TopicInfo(name)
	if err != nil {
		return "", err
	}
	return s.run(ctx, cmd)
}

// EchoTopic prints one message from the topic.
func (s *TopicService) EchoTopic(ctx context.Context, name string) (string, error) {
	cmd, err := s.catalog.TopicEcho(name)
	if err != nil {
		return "", err
	}
	return s.run(ctx, cmd)
}

func (s *TopicService) ShowInterface(ctx context.Context, typ string) (string, error) {
	cmd, err := s.catalog.InterfaceShow(typ)
	if err != nil {
		return "", err
	}
	return s.run(ctx, cmd)
}

func (s *TopicService) run(ctx context.Context, cmd robotcmd.Command) (string, error) {
	if err := cmd.Validate(s.allow); err != nil {
		return "", err
	}
	res, err := s.runner.Execute(ctx, cmd.String())
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

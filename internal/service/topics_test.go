package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/robotcmd"
)

func TestParseTopicList(t *testing.T) {
	out := "/cmd_vel [geometry_msgs/msg/Twist]\n\n/scan [sensor_msgs/msg/LaserScan]\n/odom\n  /tf   [tf2_msgs/msg/TFMessage]  \n"
	want := []models.Topic{
		{Name: "/cmd_vel", Type: "geometry_msgs/msg/Twist"},
		{Name: "/scan", Type: "sensor_msgs/msg/LaserScan"},
		{Name: "/odom", Type: models.UnknownTopicType},
		{Name: "/tf", Type: "tf2_msgs/msg/TFMessage"},
	}
	if got := ParseTopicList(out); !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseTopicList =\n%+v\nwant\n%+v", got, want)
	}
	if got := ParseTopicList(""); len(got) != 0 {
		t.Fatalf("empty output should yield no topics, got %+v", got)
	}
}

func TestTopicService(t *testing.T) {
	runner := &fakeRunner{fn: func(_ context.Context, cmd string) (models.CommandResult, error) {
		switch cmd {
		case "ros2 topic list -t":
			return models.CommandResult{Output: "/scan [sensor_msgs/msg/LaserScan]\n"}, nil
		case "ros2 topic info /scan":
			return models.CommandResult{Output: "Type: sensor_msgs/msg/LaserScan\n"}, nil
		case "ros2 interface show sensor_msgs/msg/LaserScan":
			return models.CommandResult{Output: "float32 angle_min\n"}, nil
		}
		return models.CommandResult{}, errors.New("unexpected command " + cmd)
	}}
	catalog := testCatalog()
	s := NewTopicService(runner, catalog, catalog.AllowList())
	ctx := context.Background()

	topics, err := s.ListTopics(ctx)
	if err != nil || len(topics) != 1 || topics[0].Name != "/scan" {
		t.Fatalf("ListTopics = %+v, %v", topics, err)
	}
	if out, err := s.TopicInfo(ctx, "/scan"); err != nil || out == "" {
		t.Fatalf("TopicInfo = %q, %v", out, err)
	}
	if out, err := s.ShowInterface(ctx, "sensor_msgs/msg/LaserScan"); err != nil || out != "float32 angle_min\n" {
		t.Fatalf("ShowInterface = %q, %v", out, err)
	}

	before := len(runner.commands())
	if _, err := s.TopicInfo(ctx, "/scan; rm -rf /"); !errors.Is(err, robotcmd.ErrInvalidTopic) {
		t.Fatalf("want ErrInvalidTopic, got %v", err)
	}
	if _, err := s.ShowInterface(ctx, "$(id)"); !errors.Is(err, robotcmd.ErrInvalidInterfaceType) {
		t.Fatalf("want ErrInvalidInterfaceType, got %v", err)
	}
	if len(runner.commands()) != before {
		t.Fatalf("invalid names must not reach the runner")
	}
}

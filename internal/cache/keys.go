package cache

import "strconv"

func SubjectKey(id int) string      { return "subject:" + strconv.Itoa(id) }
func TopicKey(id int) string        { return "topic:" + strconv.Itoa(id) }
func TopicSubjectKey(id int) string { return "topic_subject:" + strconv.Itoa(id) }

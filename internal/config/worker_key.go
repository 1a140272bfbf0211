package config

type WorkerKeyStruct struct {
	GradeAttemptsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	GradeAttemptsQueue: "grade_attempts_queue",
}

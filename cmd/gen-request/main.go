package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/oneee-playground/glue-deployer/internal/job"
	"github.com/ryanolee/go-chaff"
)

func main() {
	num := flag.Int("n", 1, "number of generated requests")
	flag.Parse()

	generator, err := chaff.ParseSchema(job.RequestSchema, &chaff.ParserOptions{})
	if err != nil {
		log.Fatal(err)
	}

	validator, err := job.NewValidator()
	if err != nil {
		log.Fatal(err)
	}

	for i := 0; i < *num; i++ {
		result := generator.Generate(&chaff.GeneratorOptions{})

		if m, ok := result.(map[string]interface{}); ok {
			m["id"] = uuid.New().String()
		}

		b, err := json.Marshal(result)
		if err != nil {
			log.Fatal(err)
		}

		if err := validator.Validate(b); err != nil {
			log.Println("generated request is invalid:", err)
		}

		fmt.Println(string(b))
	}
}

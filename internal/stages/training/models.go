// internal/stages/training/models.go
package training

const modelFile = "model.json"

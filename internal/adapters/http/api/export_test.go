package api

// ClassifyStatus exposes classify to the external test package.
var ClassifyStatus = classify

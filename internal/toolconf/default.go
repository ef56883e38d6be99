package toolconf

// DefaultFilename is the synthetic file name used in diagnostics for the
// built-in tool definitions.
const DefaultFilename = "<builtin>.hcl"

// DefaultHCL is used when no tool file is given. It expects Ensembl VEP,
// bgzip and tabix on PATH.
const DefaultHCL = `
tool "annotate" {
  command = "vep"
  args = [
    "--input_file", split.path,
    "--output_file", output.path,
    "--config", config.path,
    "--vcf",
    "--force_overwrite",
    "--no_stats",
  ]
}

tool "compress" {
  command = "bgzip"
  args    = ["-c", input.path]
  stdout  = output.path
}

tool "index" {
  command = "tabix"
  args    = [index.type == "csi" ? "--csi" : "", "-p", "vcf", input.path]
}
`

// Package toolconf loads the external tool definitions used by the default
// pipeline stages from HCL.
//
// A tool is declared with a labelled block:
//
//	tool "annotate" {
//	  command = "vep"
//	  args    = ["--input_file", split.path, "--output_file", output.path, "--config", config.path]
//	  env     = { PERL5LIB = "/opt/vep/lib" }
//	}
//
// Attributes other than command are expressions. They are kept unevaluated
// at load time and rendered per invocation against an evaluation context
// holding the variables of that invocation (split, config, input, output,
// index). Empty strings are dropped from args, which lets a conditional
// produce an optional flag:
//
//	args = [index.type == "csi" ? "--csi" : "", "-p", "vcf", input.path]
package toolconf
